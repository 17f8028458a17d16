package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voxscribe/security"
	"github.com/kbukum/voxscribe/security/tlstest"
)

func TestClientDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("deep") != "1" {
			t.Errorf("missing query param")
		}
		if r.Header.Get("X-Default") != "yes" || r.Header.Get("X-Request") != "r" {
			t.Errorf("missing headers: %v", r.Header)
		}
		if r.Header.Get("Authorization") != "Bearer hf_token" {
			t.Errorf("missing bearer auth")
		}
		w.Header().Set("X-Backend", "pyannote")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Name:    "pyannote",
		BaseURL: srv.URL + "/",
		Headers: map[string]string{"X-Default": "yes"},
		Auth:    BearerAuth("hf_token"),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	resp, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/health",
		Query:   map[string]string{"deep": "1"},
		Headers: map[string]string{"X-Request": "r"},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if !resp.IsSuccess() || string(resp.Body) != `{"status":"ok"}` {
		t.Errorf("unexpected response %d %s", resp.StatusCode, resp.Body)
	}
	if resp.Headers["X-Backend"] != "pyannote" {
		t.Errorf("expected flattened header, got %v", resp.Headers)
	}
	if c.Name() != "pyannote" || c.Config().Timeout != defaultTimeout {
		t.Errorf("unexpected config %+v", c.Config())
	}
}

func TestClientJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := c.Execute(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/v1/messages",
		Body:   map[string]int{"max_tokens": 800},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if string(resp.Body) != `{"max_tokens":800}` {
		t.Errorf("unexpected echo %s", resp.Body)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		wantMsg string
	}{
		{"auth", 401, `{"detail":"invalid token"}`, IsAuth, "invalid token"},
		{"not found", 404, "", IsNotFound, "status 404"},
		{"server", 500, `{"error":"CUDA out of memory"}`, IsServerError, "CUDA out of memory"},
		{"plain text", 503, "model loading\nretry later", IsServerError, "model loading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := New(Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
			if !tt.check(err) {
				t.Fatalf("unexpected classification for %v", err)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("expected response with status %d", tt.status)
			}
			var e *Error
			if !errors.As(err, &e) || e.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestClientConnectionAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow"})
	if !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("timeouts are retryable")
	}

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := closed.URL
	closed.Close()
	c2, _ := New(Config{BaseURL: url})
	if _, err := c2.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); !IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestMultipartBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("num_speakers") != "2" {
			t.Errorf("missing num_speakers field")
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("missing audio part: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "a\"b.wav" || string(data) != "RIFF" {
			t.Errorf("unexpected file %q %q", hdr.Filename, data)
		}
		if hdr.Header.Get("Content-Type") != "audio/wav" {
			t.Errorf("unexpected part type %q", hdr.Header.Get("Content-Type"))
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Headers: map[string]string{"Content-Type": "application/json"}})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body: &MultipartBody{
			Fields: map[string]string{"num_speakers": "2"},
			Files:  []FileField{{FieldName: "audio", FileName: "a\"b.wav", ContentType: "audio/wav", Data: []byte("RIFF")}},
		},
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
}

func TestHeaderAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "sk-ant" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Auth: HeaderAuth("x-api-key", "sk-ant")})
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Errorf("expected header auth accepted, got %v", err)
	}
	// Request-level auth replaces the client default.
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/", Auth: &AuthConfig{Type: AuthNone}})
	if !IsAuth(err) {
		t.Errorf("expected 401 without key, got %v", err)
	}
}

func TestClientMutualTLS(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{certs.Leaf},
		ClientCAs:    certs.Pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}
	srv.StartTLS()
	defer srv.Close()

	tests := []struct {
		name   string
		tls    *security.TLSConfig
		wantOK bool
	}{
		{"mtls", &security.TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}, true},
		{"no client cert", &security.TLSConfig{CAFile: certs.CAFile}, false},
		{"unknown ca", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(Config{Name: "whisper", BaseURL: srv.URL, TLS: tc.tls, Timeout: 5 * time.Second})
			if err != nil {
				t.Fatal(err)
			}
			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/health"})
			if tc.wantOK {
				if err != nil || string(resp.Body) != "ok" {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected handshake failure")
			}
		})
	}
}

func TestNewRejectsBadTLS(t *testing.T) {
	_, err := New(Config{Name: "pyannote", TLS: &security.TLSConfig{CertFile: "cert.pem"}})
	if err == nil || !strings.Contains(err.Error(), "together") {
		t.Errorf("expected cert/key pair error, got %v", err)
	}
}
