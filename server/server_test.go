package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/component"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Port)
	}
	if cfg.BodyLimit() != 1100<<20 {
		t.Errorf("expected 1100MB body limit, got %d", cfg.BodyLimit())
	}

	cfg.MaxBodySize = "lots"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid max_body_size to fail")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		err  bool
	}{
		{"10MB", 10 << 20, false},
		{"512kb", 512 << 10, false},
		{"2GB", 2 << 30, false},
		{" 1024 ", 1024, false},
		{"100B", 100, false},
		{"", 0, false},
		{"ten", 0, true},
		{"-1MB", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSize(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/kbukum/voxscribe/api.(*Handler).Transcribe-fm": "Handler.Transcribe",
		"github.com/kbukum/voxscribe/server/endpoint.Health.func1": "health",
		"main.handler": "handler",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1", Port: 0, MaxBodySize: "1KB", ShutdownTimeout: time.Second}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return New(cfg, logger.Nop())
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.ApplyMiddleware(t.Context())
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "diarization", Status: component.StatusHealthy}}
	}
	s.RegisterDefaultEndpoints("voxscribe", checker, nil, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	s.Engine().POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	sc := NewComponent(s)
	if h := sc.Health(t.Context()); h.Status != component.StatusUnhealthy {
		t.Errorf("server should be unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = sc.Stop(context.Background()) }()

	if h := sc.Health(t.Context()); h.Status != component.StatusHealthy {
		t.Errorf("server should be healthy after start, got %s", h.Status)
	}

	base := "http://" + s.Addr()
	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("server-wide middleware should add X-Request-Id")
	}

	big, err := http.Post(base+"/echo", "text/plain", strings.NewReader(strings.Repeat("x", 4096)))
	if err != nil {
		t.Fatalf("POST /echo: %v", err)
	}
	big.Body.Close()
	if big.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized body, got %d", big.StatusCode)
	}

	if d := sc.Describe(); d.Type != "server" || d.Details != s.Addr() {
		t.Errorf("unexpected description %+v", d)
	}

	routes := sc.Routes()
	if len(routes) == 0 || routes[0].Path != "/echo" {
		t.Fatalf("API routes should be listed first, got %+v", routes)
	}
	if !strings.HasSuffix(routes[len(routes)-1].Handler, "(system)") {
		t.Errorf("system routes should be labelled, got %+v", routes[len(routes)-1])
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"app error", apperrors.AudioFile("File is empty"), http.StatusBadRequest, "File is empty"},
		{"size", apperrors.AudioSize(1200, 1000), http.StatusRequestEntityTooLarge, "File size (1200.0MB) exceeds maximum (1000MB)"},
		{"plain", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Request = httptest.NewRequest("POST", "/transcribe", http.NoBody)
			RespondWithError(c, logger.Nop(), tc.err)

			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Success || body.Message != tc.message {
				t.Errorf("unexpected body %+v", body)
			}
			if strings.Contains(rr.Body.String(), "disk on fire") {
				t.Error("unclassified error details must not leak")
			}
		})
	}
}

func TestRespondOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	RespondOK(c, "done", map[string]int{"n": 1})

	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !env.Success || env.Message != "done" {
		t.Errorf("unexpected envelope %+v", env)
	}
}
