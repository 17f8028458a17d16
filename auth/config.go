package auth

import (
	"errors"
	"fmt"

	"github.com/kbukum/voxscribe/auth/apikey"
	"github.com/kbukum/voxscribe/auth/jwt"
)

// Config holds the authentication settings for the transcription API.
// JWT is a pointer so an unused bearer setup is nil and skips validation.
//
//	auth:
//	  enabled: true
//	  jwt:
//	    secret: "${AUTH_JWT_SECRET}"
//	    issuer: "voxscribe"
//	  api_keys:
//	    - name: "batch-importer"
//	      hash: "$2a$12$..."
type Config struct {
	Enabled bool           `mapstructure:"enabled"`
	JWT     *jwt.Config    `mapstructure:"jwt"`
	APIKeys []apikey.Entry `mapstructure:"api_keys"`
}

// ApplyDefaults fills defaults on the configured methods.
func (c *Config) ApplyDefaults() {
	if c.JWT != nil {
		c.JWT.ApplyDefaults()
	}
}

// Validate checks that an enabled setup configures at least one method.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.JWT == nil && len(c.APIKeys) == 0 {
		return errors.New("auth.enabled requires auth.jwt or auth.api_keys")
	}
	if c.JWT != nil {
		if err := c.JWT.Validate(); err != nil {
			return fmt.Errorf("auth.jwt: %w", err)
		}
	}
	for i, k := range c.APIKeys {
		if k.Name == "" || k.Hash == "" {
			return fmt.Errorf("auth.api_keys[%d]: name and hash are required", i)
		}
	}
	return nil
}

// Describe returns a one-liner for the startup summary, e.g.
// "JWT(HS256) api_keys=2".
func (c *Config) Describe() string {
	if !c.Enabled {
		return "disabled"
	}
	var line string
	if c.JWT != nil {
		line = fmt.Sprintf("JWT(%s)", c.JWT.Method)
	}
	if len(c.APIKeys) > 0 {
		if line != "" {
			line += " "
		}
		line += fmt.Sprintf("api_keys=%d", len(c.APIKeys))
	}
	return line
}
