package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kbukum/voxscribe/align"
	"github.com/kbukum/voxscribe/audio"
	"github.com/kbukum/voxscribe/diarization"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/metrics"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
)

// upload is 6.5 s of a 440 Hz tone at 22.05 kHz stereo.
func upload(t *testing.T) []byte {
	t.Helper()
	return tone(t, 6.5)
}

// tone is seconds of a 440 Hz tone at 22.05 kHz stereo.
func tone(t *testing.T, seconds float64) []byte {
	t.Helper()
	const rate = 22050
	frames := int(rate * seconds)
	samples := make([]float32, 2*frames)
	for i := range frames {
		v := float32(0.3 * math.Sin(2*math.Pi*440*float64(i)/rate))
		samples[2*i], samples[2*i+1] = v, v
	}
	data, err := audio.EncodeWAV(&audio.Waveform{Samples: samples, SampleRate: rate, Channels: 2}, 16)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	return data
}

type fakes struct {
	diarCalls  int
	transCalls int
	diarErr    error
	transErr   error
	gotRate    int
	gotWAV     int
}

func (f *fakes) diarizer() *diarization.Adapter {
	return diarization.NewAdapter(provider.Func("fake-diarizer",
		func(_ context.Context, req diarization.Request) (*diarization.Response, error) {
			f.diarCalls++
			f.gotWAV = len(req.Audio)
			if f.diarErr != nil {
				return nil, f.diarErr
			}
			return &diarization.Response{Segments: []diarization.Segment{
				{Speaker: "SPK_A", Start: 0, End: 2},
				{Speaker: "SPK_B", Start: 2, End: 4},
				{Speaker: "SPK_A", Start: 4.3, End: 6},
			}}, nil
		}), nil)
}

func (f *fakes) transcriber() *transcription.Adapter {
	return transcription.NewAdapter(provider.Func("fake-transcriber",
		func(_ context.Context, req transcription.Request) (*transcription.Response, error) {
			f.transCalls++
			f.gotRate = req.SampleRate
			if f.transErr != nil {
				return nil, f.transErr
			}
			return &transcription.Response{Segments: []transcription.Segment{
				{Start: 0.1, End: 1.9, Text: " hello there"},
				{Start: 2.1, End: 3.9, Text: "hi back"},
				{Start: 4.4, End: 5.9, Text: "how are you"},
			}}, nil
		}), transcription.Config{}, transcription.WithOverlapThreshold(0.3))
}

type fakeSummarizer struct {
	available bool
	calls     int
	gotText   string
	gotStats  transcript.Statistics
	gotLang   string
	err       error
}

func (s *fakeSummarizer) Available() bool { return s.available }

func (s *fakeSummarizer) Summarize(_ context.Context, text string, stats transcript.Statistics, language string) (*string, error) {
	s.calls++
	s.gotText, s.gotStats, s.gotLang = text, stats, language
	if s.err != nil {
		return nil, s.err
	}
	out := "two people greet each other"
	return &out, nil
}

func newOrchestrator(t *testing.T, f *fakes, sum Summarizer, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := New(Deps{
		Normalizer:  audio.NewNormalizer(audio.Config{}, nil),
		Diarizer:    f.diarizer(),
		Transcriber: f.transcriber(),
		Summarizer:  sum,
	}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return o
}

func TestRunScenario(t *testing.T) {
	f := &fakes{}
	sum := &fakeSummarizer{available: true}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	o := newOrchestrator(t, f, sum, WithMetrics(m), WithLanguage("en"))

	res, err := o.Run(context.Background(), Request{
		FileName:       "meeting.wav",
		Audio:          upload(t),
		Hints:          diarization.Hints{NumSpeakers: 2},
		IncludeSummary: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []align.Segment{
		{Speaker: "SPEAKER_1", Start: 0, End: 2, Duration: 2, Text: "hello there"},
		{Speaker: "SPEAKER_2", Start: 2, End: 4, Duration: 2, Text: "hi back"},
		{Speaker: "SPEAKER_1", Start: 4.3, End: 6, Duration: 6 - 4.3, Text: "how are you"},
	}
	if !reflect.DeepEqual(res.Segments, want) {
		t.Fatalf("unexpected segments\n got %+v\nwant %+v", res.Segments, want)
	}
	if res.Statistics.TotalWords != 7 || res.Statistics.NumSpeakers != 2 || res.Statistics.TotalDuration != 6 {
		t.Errorf("unexpected statistics %+v", res.Statistics)
	}
	if res.Summary == nil || *res.Summary != "two people greet each other" {
		t.Errorf("unexpected summary %v", res.Summary)
	}
	if math.Abs(res.AudioInfo.DurationSeconds-6.5) > 0.01 || res.AudioInfo.SampleRate != 22050 {
		t.Errorf("unexpected audio info %+v", res.AudioInfo)
	}

	if f.gotRate != 16000 || f.gotWAV == 0 {
		t.Errorf("backends should get canonical audio, got rate %d wav %d bytes", f.gotRate, f.gotWAV)
	}
	if sum.gotLang != "en" || sum.gotStats.TotalWords != 7 {
		t.Errorf("summarizer got lang %q stats %+v", sum.gotLang, sum.gotStats)
	}
	if sum.gotText != "SPEAKER_1: hello there\nSPEAKER_2: hi back\nSPEAKER_1: how are you" {
		t.Errorf("unexpected summary input %q", sum.gotText)
	}

	tm := res.Timings
	for _, s := range Stages {
		if tm.Get(s) < 0 {
			t.Errorf("negative timing for %s", s)
		}
	}
	if tm.Total < tm.Validation+tm.Preparation+tm.Diarization+tm.Transcription+tm.Summarization {
		t.Errorf("total %.6f is less than the sum of stages %+v", tm.Total, tm)
	}

	if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("expected one successful run, got %v", got)
	}
	if n := testutil.CollectAndCount(m.StageDuration); n != len(Stages) {
		t.Errorf("expected %d stage series, got %d", len(Stages), n)
	}
}

func TestRunEvents(t *testing.T) {
	var events []Event
	var perRequest int
	o := newOrchestrator(t, &fakes{}, &fakeSummarizer{available: true},
		WithObserver(func(ev Event) { events = append(events, ev) }))

	_, err := o.Run(context.Background(), Request{
		FileName:       "a.wav",
		Audio:          upload(t),
		IncludeSummary: true,
		Observer:       func(Event) { perRequest++ },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var states []State
	for _, ev := range events {
		if !ev.Finished {
			states = append(states, ev.State)
		}
	}
	wantStates := []State{StateValidating, StatePreparing, StateDiarizing, StateTranscribing, StateSummarizing}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("unexpected entry states %v", states)
	}
	last := events[len(events)-1]
	if last.State != StateDone || !last.State.Terminal() || last.Stage != "" || last.Elapsed <= 0 {
		t.Errorf("unexpected final event %+v", last)
	}
	if len(events) != 2*len(Stages)+1 || perRequest != len(events) {
		t.Errorf("expected %d events to both observers, got %d and %d", 2*len(Stages)+1, len(events), perRequest)
	}
}

func TestRunSkipsSummary(t *testing.T) {
	tests := []struct {
		name    string
		sum     Summarizer
		include bool
	}{
		{"caller disabled", &fakeSummarizer{available: true}, false},
		{"no backend", &fakeSummarizer{available: false}, true},
		{"nil summarizer", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var skipped bool
			o := newOrchestrator(t, &fakes{}, tt.sum, WithObserver(func(ev Event) {
				if ev.State == StateSkipped && ev.Stage == StageSummarization {
					skipped = true
				}
			}))
			res, err := o.Run(context.Background(), Request{FileName: "a.wav", Audio: upload(t), IncludeSummary: tt.include})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.Summary != nil || res.Timings.Summarization != 0 || !skipped {
				t.Errorf("expected skipped summary, got %v %v skipped=%v", res.Summary, res.Timings.Summarization, skipped)
			}
			if fs, ok := tt.sum.(*fakeSummarizer); ok && fs.calls != 0 {
				t.Error("summarizer should not be called")
			}
		})
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		fakes      *fakes
		sum        *fakeSummarizer
		wantCode   apperrors.ErrorCode
		wantStage  Stage
		diarCalls  int
		transCalls int
	}{
		{
			name: "unsupported format", file: "a.aac", fakes: &fakes{}, sum: &fakeSummarizer{available: true},
			wantCode: apperrors.ErrCodeAudioFormat, wantStage: StageValidation,
		},
		{
			name: "diarization failure", file: "a.wav", fakes: &fakes{diarErr: errors.New("HTTP 500")}, sum: &fakeSummarizer{available: true},
			wantCode: apperrors.ErrCodeDiarization, wantStage: StageDiarization, diarCalls: 1,
		},
		{
			name: "transcription failure", file: "a.wav", fakes: &fakes{transErr: errors.New("model not loaded")}, sum: &fakeSummarizer{available: true},
			wantCode: apperrors.ErrCodeTranscription, wantStage: StageTranscription, diarCalls: 1, transCalls: 1,
		},
		{
			name: "summary failure", file: "a.wav", fakes: &fakes{}, sum: &fakeSummarizer{available: true, err: apperrors.Summarization(errors.New("overloaded"))},
			wantCode: apperrors.ErrCodeSummarization, wantStage: StageSummarization, diarCalls: 1, transCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failed []Stage
			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			o := newOrchestrator(t, tt.fakes, tt.sum, WithMetrics(m), WithObserver(func(ev Event) {
				if ev.State == StateFailed {
					failed = append(failed, ev.Stage)
				}
			}))

			res, err := o.Run(context.Background(), Request{FileName: tt.file, Audio: upload(t), IncludeSummary: true})
			if res != nil {
				t.Error("no partial result on failure")
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if !reflect.DeepEqual(failed, []Stage{tt.wantStage}) {
				t.Errorf("expected failure in %s, got %v", tt.wantStage, failed)
			}
			if tt.fakes.diarCalls != tt.diarCalls || tt.fakes.transCalls != tt.transCalls {
				t.Errorf("later stages ran: diarization %d, transcription %d", tt.fakes.diarCalls, tt.fakes.transCalls)
			}
			if got := testutil.ToFloat64(m.Runs.WithLabelValues(metrics.OutcomeFailed)); got != 1 {
				t.Errorf("expected one failed run, got %v", got)
			}
			if got := testutil.ToFloat64(m.StageErrors.WithLabelValues(string(tt.wantStage), string(tt.wantCode))); got != 1 {
				t.Errorf("expected stage error counted, got %v", got)
			}
		})
	}
}

func TestRunMergesSameSpeakerTurns(t *testing.T) {
	diar := diarization.NewAdapter(provider.Func("d", func(context.Context, diarization.Request) (*diarization.Response, error) {
		return &diarization.Response{Segments: []diarization.Segment{
			{Speaker: "x", Start: 0, End: 2},
			{Speaker: "x", Start: 2.5, End: 4},
		}}, nil
	}), nil)
	trans := transcription.NewAdapter(provider.Func("t", func(context.Context, transcription.Request) (*transcription.Response, error) {
		return &transcription.Response{Segments: []transcription.Segment{
			{Start: 0, End: 2, Text: "one"},
			{Start: 2.5, End: 4, Text: "two"},
		}}, nil
	}), transcription.Config{})

	o, err := New(Deps{Normalizer: audio.NewNormalizer(audio.Config{}, nil), Diarizer: diar, Transcriber: trans})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := o.Run(context.Background(), Request{FileName: "a.wav", Audio: upload(t)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []align.Segment{{Speaker: "SPEAKER_1", Start: 0, End: 4, Duration: 4, Text: "one two"}}
	if !reflect.DeepEqual(res.Segments, want) {
		t.Errorf("unexpected segments %+v", res.Segments)
	}
	if res.Statistics.Speakers["SPEAKER_1"].Turns != 1 {
		t.Errorf("merged turns should count once, got %+v", res.Statistics.Speakers)
	}
}

func TestNewRequiresStages(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("expected an error without stage implementations")
	}
}

func TestStageStates(t *testing.T) {
	for _, s := range Stages {
		if s.State() == "" || s.State().Terminal() {
			t.Errorf("stage %s has no running state", s)
		}
	}
	if !StateFailed.Terminal() || StateSkipped.Terminal() {
		t.Error("unexpected terminal states")
	}
}

// wavSeconds reads the duration of a mono WAV from its size.
func wavSeconds(data []byte, bytesPerSecond int) int {
	return int(math.Round(float64(len(data)-44) / float64(bytesPerSecond)))
}

type perSecondSummarizer struct{}

func (perSecondSummarizer) Available() bool { return true }

func (perSecondSummarizer) Summarize(_ context.Context, _ string, stats transcript.Statistics, _ string) (*string, error) {
	out := fmt.Sprintf("%d words from %d speakers", stats.TotalWords, stats.NumSpeakers)
	return &out, nil
}

func TestRunConcurrent(t *testing.T) {
	const runs = 8
	const perSecond = 10 * time.Millisecond

	// Both backends answer from the audio they receive: one turn per second
	// alternating between two speakers, and one word per second.
	diar := diarization.NewAdapter(provider.Func("shared-diarizer",
		func(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
			secs := wavSeconds(req.Audio, 16000*2)
			select {
			case <-time.After(time.Duration(secs) * perSecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			resp := &diarization.Response{}
			for k := range secs {
				resp.Segments = append(resp.Segments, diarization.Segment{
					Speaker: []string{"SPK_A", "SPK_B"}[k%2], Start: float64(k), End: float64(k + 1),
				})
			}
			return resp, nil
		}), nil)
	trans := transcription.NewAdapter(provider.Func("shared-transcriber",
		func(_ context.Context, req transcription.Request) (*transcription.Response, error) {
			secs := wavSeconds(req.Audio, req.SampleRate*4)
			resp := &transcription.Response{}
			for k := range secs {
				resp.Segments = append(resp.Segments, transcription.Segment{
					Start: float64(k) + 0.1, End: float64(k) + 0.9, Text: fmt.Sprintf("w%d", k),
				})
			}
			return resp, nil
		}), transcription.Config{}, transcription.WithOverlapThreshold(0.3))

	o, err := New(Deps{
		Normalizer:  audio.NewNormalizer(audio.Config{}, nil),
		Diarizer:    diar,
		Transcriber: trans,
		Summarizer:  perSecondSummarizer{},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	clips := make([][]byte, runs)
	for i := range clips {
		clips[i] = tone(t, float64(2+i))
	}

	results := make([]*Result, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = o.Run(context.Background(), Request{
				FileName:       fmt.Sprintf("call-%d.wav", i),
				Audio:          clips[i],
				IncludeSummary: true,
			})
		}()
	}
	wg.Wait()

	for i := range runs {
		secs := 2 + i
		res, err := results[i], errs[i]
		if err != nil {
			t.Errorf("run %d failed: %v", i, err)
			continue
		}
		if math.Abs(res.AudioInfo.DurationSeconds-float64(secs)) > 0.01 {
			t.Errorf("run %d: duration %.3f, want %d", i, res.AudioInfo.DurationSeconds, secs)
		}
		if len(res.Segments) != secs {
			t.Errorf("run %d: %d segments, want %d", i, len(res.Segments), secs)
			continue
		}
		for k, seg := range res.Segments {
			want := align.Segment{
				Speaker:  fmt.Sprintf("SPEAKER_%d", k%2+1),
				Start:    float64(k),
				End:      float64(k + 1),
				Duration: 1,
				Text:     fmt.Sprintf("w%d", k),
			}
			if seg != want {
				t.Errorf("run %d segment %d = %+v, want %+v", i, k, seg, want)
			}
		}
		if res.Statistics.TotalWords != secs || res.Statistics.NumSpeakers != 2 {
			t.Errorf("run %d: unexpected statistics %+v", i, res.Statistics)
		}
		if want := fmt.Sprintf("%d words from 2 speakers", secs); res.Summary == nil || *res.Summary != want {
			t.Errorf("run %d: summary %v, want %q", i, res.Summary, want)
		}
		minDiar := (time.Duration(secs) * perSecond).Seconds()
		if res.Timings.Diarization < minDiar {
			t.Errorf("run %d: diarization took %.3fs, its backend slept %.3fs", i, res.Timings.Diarization, minDiar)
		}
		if res.Timings.Total < res.Timings.Diarization+res.Timings.Transcription {
			t.Errorf("run %d: total %.3fs below its stages %+v", i, res.Timings.Total, res.Timings)
		}
	}
}
