package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod is an HMAC algorithm accepted for bearer tokens.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// minSecretLen is the shortest accepted HMAC secret in bytes.
const minSecretLen = 32

// Config configures bearer token signing and verification.
type Config struct {
	// Secret is the shared HMAC key.
	Secret string `mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// Issuer, when set, must match the "iss" claim.
	Issuer string `mapstructure:"issuer"`

	// Audience, when set, must appear in the "aud" claim.
	Audience string `mapstructure:"audience"`

	// TokenTTL is the lifetime of tokens issued by the CLI (default: 24h).
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// Leeway tolerates clock skew on exp/nbf checks.
	Leeway time.Duration `mapstructure:"leeway"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

// Validate checks the secret and signing method.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
	default:
		return fmt.Errorf("unsupported signing method %q (use HS256, HS384 or HS512)", c.Method)
	}
	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if len(c.Secret) < minSecretLen {
		return fmt.Errorf("secret must be at least %d bytes", minSecretLen)
	}
	if c.TokenTTL < 0 {
		return errors.New("token_ttl must be non-negative")
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}

func (c *Config) key() []byte {
	return []byte(c.Secret)
}
