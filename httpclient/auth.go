package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthBearer
	AuthHeader
	AuthCustom
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType
	// Token is the bearer token (AuthBearer) or header value (AuthHeader).
	Token string
	// Header is the header name for AuthHeader, e.g. "x-api-key".
	Header string
	// Apply modifies the request (AuthCustom).
	Apply func(*http.Request)
}

// BearerAuth sends "Authorization: Bearer <token>". The pyannote sidecar
// forwards this token to the Hugging Face hub.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// HeaderAuth sends the key in a named header.
func HeaderAuth(header, key string) *AuthConfig {
	return &AuthConfig{Type: AuthHeader, Header: header, Token: key}
}

// CustomAuth applies fn to each request.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		if a.Token != "" {
			req.Header.Set("Authorization", "Bearer "+a.Token)
		}
	case AuthHeader:
		if a.Token != "" {
			req.Header.Set(a.Header, a.Token)
		}
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
}
