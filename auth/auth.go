package auth

import (
	"errors"

	"github.com/kbukum/voxscribe/auth/apikey"
	"github.com/kbukum/voxscribe/auth/jwt"
)

// Authentication methods recorded on a Principal.
const (
	MethodBearer = "bearer"
	MethodAPIKey = "api_key"
)

// ErrInvalidCredentials is returned by validators for any rejected
// credential. Callers never learn which check failed.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject string
	Method  string
}

// TokenValidator validates a presented credential.
type TokenValidator interface {
	ValidateToken(token string) (*Principal, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(token string) (*Principal, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(token string) (*Principal, error) {
	return f(token)
}

// BearerValidator accepts JWTs signed by svc.
func BearerValidator(svc *jwt.Service) TokenValidator {
	return TokenValidatorFunc(func(token string) (*Principal, error) {
		claims, err := svc.Parse(token)
		if err != nil {
			return nil, errors.Join(ErrInvalidCredentials, err)
		}
		return &Principal{Subject: claims.Subject, Method: MethodBearer}, nil
	})
}

// APIKeyValidator accepts keys matching one of v's hashes.
func APIKeyValidator(v *apikey.Verifier) TokenValidator {
	return TokenValidatorFunc(func(key string) (*Principal, error) {
		name, err := v.Verify(key)
		if err != nil {
			return nil, errors.Join(ErrInvalidCredentials, err)
		}
		return &Principal{Subject: name, Method: MethodAPIKey}, nil
	})
}

// Validators holds the validators built from Config. A nil field means the
// method is not configured.
type Validators struct {
	Bearer TokenValidator
	APIKey TokenValidator
}

// Build creates the configured validators. It returns a zero Validators
// when authentication is disabled.
func Build(cfg *Config) (Validators, error) {
	var v Validators
	if !cfg.Enabled {
		return v, nil
	}
	if cfg.JWT != nil {
		svc, err := jwt.NewService(cfg.JWT)
		if err != nil {
			return v, err
		}
		v.Bearer = BearerValidator(svc)
	}
	if len(cfg.APIKeys) > 0 {
		verifier, err := apikey.NewVerifier(cfg.APIKeys)
		if err != nil {
			return v, err
		}
		v.APIKey = APIKeyValidator(verifier)
	}
	return v, nil
}
