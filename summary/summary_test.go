package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/llm"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcript"
)

type recorder struct {
	reqs  []llm.CompletionRequest
	reply string
	err   error
}

func (r *recorder) backend() Backend {
	return provider.Func("fake-llm", func(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
		r.reqs = append(r.reqs, req)
		if r.err != nil {
			return llm.CompletionResponse{}, r.err
		}
		return llm.CompletionResponse{Content: r.reply, Model: req.Model}, nil
	})
}

func stats() transcript.Statistics {
	return transcript.Statistics{TotalDuration: 90, TotalWords: 12345, NumSpeakers: 2}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Dialect != "anthropic" || cfg.Model != DefaultModel || cfg.MaxTokens != 800 || cfg.MeetingMaxTokens != 600 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Enabled() {
		t.Error("config without api key should be disabled")
	}
	lc := cfg.LLMConfig()
	if lc.Temperature != 0 || lc.Model != DefaultModel || lc.Dialect != "anthropic" {
		t.Errorf("unexpected llm config %+v", lc)
	}
}

func TestSummarizeDisabled(t *testing.T) {
	s := New(nil, Config{}, nil)
	if s.Available() {
		t.Fatal("summarizer without backend should be unavailable")
	}
	got, err := s.Summarize(context.Background(), "text", stats(), "id")
	if got != nil || err != nil {
		t.Errorf("expected nil summary and no error, got %v %v", got, err)
	}
	got, err = s.MeetingSummary(context.Background(), "text", MeetingStandup, "id")
	if got != nil || err != nil {
		t.Errorf("expected nil meeting summary and no error, got %v %v", got, err)
	}
}

func TestSummarizeRequest(t *testing.T) {
	tests := []struct {
		language string
		want     []string
	}{
		{"id", []string{"dalam bahasa Indonesia", "Durasi: 1.5 menit", "Pembicara: 2", "Total kata: 12,345", "TRANSKRIP:\nSPEAKER_1: halo"}},
		{"en", []string{"in English", "Duration: 1.5 minutes", "Speakers: 2", "Total words: 12,345", "TRANSCRIPT:\nSPEAKER_1: halo"}},
		{"", []string{"in English"}},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			rec := &recorder{reply: "ringkasan"}
			s := New(rec.backend(), Config{}, nil)

			got, err := s.Summarize(context.Background(), "SPEAKER_1: halo", stats(), tt.language)
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if got == nil || *got != "ringkasan" {
				t.Fatalf("unexpected summary %v", got)
			}

			req := rec.reqs[0]
			if req.Model != DefaultModel || req.MaxTokens != 800 || req.Temperature != 0 {
				t.Errorf("unexpected request settings %+v", req)
			}
			if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
				t.Fatalf("expected one user message, got %+v", req.Messages)
			}
			for _, w := range tt.want {
				if !strings.Contains(req.Messages[0].Content, w) {
					t.Errorf("prompt missing %q:\n%s", w, req.Messages[0].Content)
				}
			}
		})
	}
}

func TestSummarizeTruncatesLongTranscripts(t *testing.T) {
	rec := &recorder{reply: "ok"}
	s := New(rec.backend(), Config{}, nil)
	long := strings.Repeat("é", MaxTranscriptChars+50)

	if _, err := s.Summarize(context.Background(), long, stats(), "en"); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	prompt := rec.reqs[0].Messages[0].Content
	if !strings.Contains(prompt, strings.Repeat("é", MaxTranscriptChars)+"...") {
		t.Error("transcript should be cut at the limit and marked")
	}
	if strings.Contains(prompt, strings.Repeat("é", MaxTranscriptChars+1)) {
		t.Error("transcript should not exceed the limit")
	}

	exact := strings.Repeat("a", MaxTranscriptChars)
	if got := truncate(exact); got != exact {
		t.Error("a transcript at the limit should be left alone")
	}
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		rec     *recorder
		wantMsg string
	}{
		{"backend failure", &recorder{err: errors.New("HTTP 529: overloaded")}, "Failed to generate summary: HTTP 529: overloaded"},
		{"empty completion", &recorder{reply: ""}, "Failed to generate summary: llm: empty completion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.rec.backend(), Config{}, nil)
			_, err := s.Summarize(context.Background(), "text", stats(), "id")
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.Code != apperrors.ErrCodeSummarization {
				t.Fatalf("expected summarization error, got %v", err)
			}
			if appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
			if !apperrors.IsStageError(err) {
				t.Error("summary failures are stage errors")
			}
		})
	}
}

func TestMeetingSummary(t *testing.T) {
	tests := []struct {
		kind     MeetingType
		language string
		want     string
	}{
		{MeetingStandup, "id", "Ringkas standup meeting ini"},
		{MeetingStandup, "en", "Summarize this standup meeting"},
		{MeetingInterview, "id", "Ringkas interview ini"},
		{MeetingInterview, "en", "Summarize this interview"},
		{MeetingGeneral, "en", "Summarize this meeting"},
		{ParseMeetingType("retro"), "id", "Ringkas meeting ini"},
		{MeetingType("unknown"), "en", "Summarize this meeting"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.language, func(t *testing.T) {
			rec := &recorder{reply: "notes"}
			s := New(rec.backend(), Config{}, nil)
			got, err := s.MeetingSummary(context.Background(), "SPEAKER_1: hi", tt.kind, tt.language)
			if err != nil || got == nil || *got != "notes" {
				t.Fatalf("unexpected result %v %v", got, err)
			}
			req := rec.reqs[0]
			if req.MaxTokens != 600 {
				t.Errorf("expected max tokens 600, got %d", req.MaxTokens)
			}
			if !strings.HasPrefix(req.Messages[0].Content, tt.want) {
				t.Errorf("prompt should start with %q:\n%s", tt.want, req.Messages[0].Content)
			}
		})
	}
}

func TestMeetingSummaryError(t *testing.T) {
	s := New((&recorder{err: errors.New("boom")}).backend(), Config{}, nil)
	_, err := s.MeetingSummary(context.Background(), "x", MeetingGeneral, "en")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Message != "Failed to generate meeting summary: boom" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestParseMeetingType(t *testing.T) {
	for in, want := range map[string]MeetingType{
		"standup":   MeetingStandup,
		"interview": MeetingInterview,
		"general":   MeetingGeneral,
		"":          MeetingGeneral,
		"retro":     MeetingGeneral,
	} {
		if got := ParseMeetingType(in); got != want {
			t.Errorf("ParseMeetingType(%q) = %q, want %q", in, got, want)
		}
	}
}
