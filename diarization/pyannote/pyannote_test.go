package pyannote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/voxscribe/diarization"
	apperrors "github.com/kbukum/voxscribe/errors"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := New(Config{BaseURL: srv.URL, Token: "hf_test"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestExecuteSendsMultipart(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("num_speakers") != "2" {
			t.Errorf("expected num_speakers=2, got %q", r.FormValue("num_speakers"))
		}
		if _, ok := r.MultipartForm.Value["min_speakers"]; ok {
			t.Error("min_speakers must not be sent")
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("missing audio part: %v", err)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFF" || hdr.Filename != "audio.wav" {
			t.Errorf("unexpected upload %q %q", data, hdr.Filename)
		}
		_, _ = w.Write([]byte(`{"segments":[
			{"speaker_id":"SPEAKER_01","start_time":0.5,"end_time":2.0},
			{"speaker_id":"SPEAKER_00","start_time":2.0,"end_time":3.5}],"num_speakers":2}`))
	})

	resp, err := p.Execute(context.Background(), diarization.Request{
		Audio: []byte("RIFF"), FileName: "audio.wav", NumSpeakers: 2,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(resp.Segments) != 2 || resp.NumSpeakers != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if s := resp.Segments[0]; s.Speaker != "SPEAKER_01" || s.Start != 0.5 || s.End != 2 {
		t.Errorf("unexpected first segment %+v", s)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", 200, `{"segments":[],"error":"pipeline crashed"}`, "pipeline crashed"},
		{"missing segments", 200, `{"num_speakers":0}`, "response has no segments array"},
		{"server error body", 500, `{"error":"model not loaded"}`, "model not loaded"},
		{"plain 502", 502, `bad gateway`, "HTTP 502: bad gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := p.Execute(context.Background(), diarization.Request{Audio: []byte("x"), FileName: "a.wav"})
			if err == nil || err.Error() != tt.want {
				t.Errorf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEmptySegmentsAreValid(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"segments":[],"num_speakers":0}`))
	})
	resp, err := p.Execute(context.Background(), diarization.Request{Audio: []byte("x"), FileName: "a.wav"})
	if err != nil || resp.Segments == nil || len(resp.Segments) != 0 {
		t.Errorf("expected empty non-nil segments, got %+v %v", resp, err)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"healthy", 200, `{"status":"healthy"}`, true},
		{"loading", 200, `{"status":"loading","model_loaded":false}`, false},
		{"loaded flag", 200, `{"status":"degraded","model_loaded":true}`, true},
		{"down", 503, `{"status":"unavailable"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			if got := p.IsAvailable(context.Background()); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAdapterOverSidecar(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"segments":[
			{"speaker_id":"B","start_time":0,"end_time":1},
			{"speaker_id":"A","start_time":1,"end_time":2},
			{"speaker_id":"B","start_time":2,"end_time":3}]}`))
	})
	got, err := diarization.NewAdapter(p, nil).Diarize(context.Background(), []byte("x"), diarization.Hints{})
	if err != nil {
		t.Fatalf("Diarize failed: %v", err)
	}
	if got[0].Speaker != "SPEAKER_1" || got[1].Speaker != "SPEAKER_2" || got[2].Speaker != "SPEAKER_1" {
		t.Errorf("unexpected labels %+v", got)
	}

	down := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err = diarization.NewAdapter(down, nil).Diarize(context.Background(), []byte("x"), diarization.Hints{})
	if !apperrors.HasCode(err, apperrors.ErrCodeDiarization) {
		t.Errorf("expected Diarization error, got %v", err)
	}
}
