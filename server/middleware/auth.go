package middleware

import (
	"net/http"
	"strings"

	"github.com/kbukum/voxscribe/auth"
	"github.com/kbukum/voxscribe/auth/authctx"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
)

// APIKeyHeader carries an API key.
const APIKeyHeader = "X-API-Key"

// AuthConfig configures the authentication middleware. A nil validator
// disables that method.
type AuthConfig struct {
	Bearer auth.TokenValidator
	APIKey auth.TokenValidator
	Log    *logger.Logger
}

// Auth requires either an X-API-Key or an Authorization: Bearer header that
// one of the configured validators accepts. The Principal is stored with
// authctx. With no validators configured every request passes.
func Auth(cfg AuthConfig) Middleware {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		if cfg.Bearer == nil && cfg.APIKey == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(r, cfg)
			if err != nil {
				log.WithContext(r.Context()).Warn("Authentication failed", map[string]interface{}{
					"path":            r.URL.Path,
					logger.FieldError: err.Error(),
				})
				w.Header().Set("WWW-Authenticate", `Bearer realm="voxscribe"`)
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.Set(r.Context(), p)))
		})
	}
}

func authenticate(r *http.Request, cfg AuthConfig) (*auth.Principal, *apperrors.AppError) {
	if key := r.Header.Get(APIKeyHeader); key != "" && cfg.APIKey != nil {
		p, err := cfg.APIKey.ValidateToken(key)
		if err != nil {
			return nil, apperrors.Unauthorized("Invalid API key")
		}
		return p, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" || cfg.Bearer == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, apperrors.Unauthorized("Invalid authorization header format")
	}
	p, err := cfg.Bearer.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid token")
	}
	return p, nil
}
