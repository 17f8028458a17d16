package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/provider"
)

type mockDialect struct {
	healthPath string
	buildErr   error
}

func (*mockDialect) Name() string                           { return "mock" }
func (*mockDialect) DefaultBaseURL() string                 { return "http://localhost:1" }
func (*mockDialect) ChatPath() string                       { return "/chat" }
func (d *mockDialect) HealthPath() string                   { return d.healthPath }
func (*mockDialect) Auth(key string) *httpclient.AuthConfig { return httpclient.BearerAuth(key) }
func (*mockDialect) Headers() map[string]string             { return map[string]string{"X-Dialect": "mock"} }

func (d *mockDialect) BuildRequest(req CompletionRequest) (any, error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	return req, nil
}

func (*mockDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var r CompletionResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func TestExecuteAppliesDefaults(t *testing.T) {
	var got CompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" || r.Header.Get("X-Dialect") != "mock" || r.Header.Get("X-Extra") != "1" {
			t.Errorf("unexpected headers %v", r.Header)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":"done","model":"m1"}`))
	}))
	defer srv.Close()

	a, err := NewWithDialect(&mockDialect{}, Config{
		BaseURL: srv.URL, APIKey: "key", Model: "m1", MaxTokens: 50,
		Headers: map[string]string{"X-Extra": "1"},
	})
	if err != nil {
		t.Fatalf("NewWithDialect failed: %v", err)
	}
	resp, err := a.Execute(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil || resp.Content != "done" {
		t.Fatalf("unexpected result %+v %v", resp, err)
	}
	if got.Model != "m1" || got.MaxTokens != 50 {
		t.Errorf("defaults not applied: %+v", got)
	}
	if a.Name() != "mock" || a.Model() != "m1" {
		t.Errorf("unexpected identity %s %s", a.Name(), a.Model())
	}
}

func TestExecuteErrors(t *testing.T) {
	a, _ := NewWithDialect(&mockDialect{buildErr: errors.New("bad")}, Config{})
	if _, err := a.Execute(context.Background(), CompletionRequest{}); err == nil {
		t.Error("expected build error")
	}
	if _, err := NewWithDialect(nil, Config{}); !errors.Is(err, ErrNoDialect) {
		t.Errorf("expected ErrNoDialect, got %v", err)
	}
	if _, err := New(Config{Dialect: "nope"}); err == nil {
		t.Error("expected unknown dialect error")
	}
}

func TestIsAvailable(t *testing.T) {
	a, _ := NewWithDialect(&mockDialect{}, Config{})
	if !a.IsAvailable(context.Background()) {
		t.Error("no health path should be available")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	a, _ = NewWithDialect(&mockDialect{healthPath: "/health"}, Config{BaseURL: srv.URL})
	if a.IsAvailable(context.Background()) {
		t.Error("503 health should be unavailable")
	}
}

func TestComplete(t *testing.T) {
	var seen CompletionRequest
	p := provider.Func("fake", func(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
		seen = req
		if req.Messages[0].Content == "empty" {
			return CompletionResponse{}, nil
		}
		return CompletionResponse{Content: "answer"}, nil
	})

	text, err := Complete(context.Background(), p, "sys", "q", WithMaxTokens(600), WithModel("m2"))
	if err != nil || text != "answer" {
		t.Fatalf("expected answer, got %q %v", text, err)
	}
	if seen.SystemPrompt != "sys" || seen.MaxTokens != 600 || seen.Model != "m2" {
		t.Errorf("options not applied: %+v", seen)
	}
	if _, err := Complete(context.Background(), p, "", "empty"); !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestDialectsSorted(t *testing.T) {
	RegisterDialect("zz-test", &mockDialect{})
	RegisterDialect("aa-test", &mockDialect{})
	names := Dialects()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("not sorted: %v", names)
		}
	}
}
