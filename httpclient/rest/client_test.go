package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/voxscribe/httpclient"
)

type health struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func TestGetDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c, err := New(httpclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	resp, err := Get[health](context.Background(), c, "/health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Data.Status != "healthy" || resp.StatusCode != 200 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestPostDecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"pipeline not loaded"}`))
	}))
	defer srv.Close()

	c, _ := New(httpclient.Config{BaseURL: srv.URL})
	resp, err := Post[health](context.Background(), c, "/diarize", map[string]string{"a": "b"},
		WithQuery(map[string]string{"x": "1"}), WithHeaders(map[string]string{"X-Trace": "t"}))
	if !IsServerError(err) {
		t.Fatalf("expected server error, got %v", err)
	}
	if resp == nil || resp.Data.Error != "pipeline not loaded" {
		t.Errorf("expected decoded error body, got %+v", resp)
	}
}

func TestPostRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c, _ := New(httpclient.Config{BaseURL: srv.URL})
	if _, err := Post[health](context.Background(), c, "/x", nil); err == nil {
		t.Error("expected decode error")
	}
}
