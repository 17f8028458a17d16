package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	svc, err := NewService(&cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Secret: testSecret}, ""},
		{"missing secret", Config{}, "secret is required"},
		{"short secret", Config{Secret: "short"}, "at least 32 bytes"},
		{"bad method", Config{Secret: testSecret, Method: "RS256"}, "unsupported signing method"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestIssueAndParse(t *testing.T) {
	svc := newTestService(t, Config{Issuer: "voxscribe", Audience: "api"})

	token, err := svc.Issue("ci-runner", ScopeTranscribe)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "ci-runner" {
		t.Errorf("expected subject ci-runner, got %q", claims.Subject)
	}
	if claims.Issuer != "voxscribe" {
		t.Errorf("expected issuer voxscribe, got %q", claims.Issuer)
	}
}

func TestParseRejects(t *testing.T) {
	svc := newTestService(t, Config{Issuer: "voxscribe"})

	other := newTestService(t, Config{Secret: strings.Repeat("x", 32), Issuer: "voxscribe"})
	forged, _ := other.Issue("mallory", ScopeTranscribe)

	noScope, _ := svc.Issue("reader")

	past := svc.now().Add(-2 * time.Hour)
	expired, _ := svc.Sign(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "late",
			Issuer:    "voxscribe",
			ExpiresAt: gojwt.NewNumericDate(past),
		},
		Scope: ScopeTranscribe,
	})

	noExpiry, _ := svc.Sign(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "forever", Issuer: "voxscribe"},
		Scope:            ScopeTranscribe,
	})

	wrongIssuer, _ := newTestService(t, Config{Issuer: "elsewhere"}).Issue("x", ScopeTranscribe)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"forged":       forged,
		"no scope":     noScope,
		"expired":      expired,
		"no expiry":    noExpiry,
		"wrong issuer": wrongIssuer,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Parse(token); err == nil {
				t.Fatal("expected token to be rejected")
			}
		})
	}

	if _, err := svc.Parse(noScope); !errors.Is(err, ErrMissingScope) {
		t.Errorf("expected ErrMissingScope, got %v", err)
	}
}

func TestHasScope(t *testing.T) {
	c := &Claims{Scope: "read transcribe"}
	if !c.HasScope("transcribe") {
		t.Error("expected transcribe scope")
	}
	if c.HasScope("trans") {
		t.Error("scopes must match whole words")
	}
}
