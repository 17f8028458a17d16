package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/pipeline"
	"github.com/kbukum/voxscribe/transcript"
)

type renderer func(*pipeline.Result) (string, error)

var renderers = map[string]renderer{
	"text": func(r *pipeline.Result) (string, error) {
		return transcript.FormatText(r.Segments, transcript.DefaultTextOptions()) + "\n", nil
	},
	"srt": func(r *pipeline.Result) (string, error) {
		return transcript.FormatSRT(r.Segments), nil
	},
	"vtt": func(r *pipeline.Result) (string, error) {
		return transcript.FormatVTT(r.Segments), nil
	},
	"report": func(r *pipeline.Result) (string, error) {
		return transcript.FormatReport(transcript.Report{
			Segments:   r.Segments,
			Statistics: r.Statistics,
			Summary:    r.Summary,
			Audio: &transcript.AudioSummary{
				DurationMinutes: r.AudioInfo.DurationMinutes,
				SampleRate:      r.AudioInfo.SampleRate,
				Channels:        r.AudioInfo.Channels,
			},
			Generated: time.Now(),
		}), nil
	},
	"json": func(r *pipeline.Result) (string, error) {
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	},
}

func newRenderer(format string) (renderer, error) {
	r, ok := renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want text, srt, vtt, report or json)", format)
	}
	return r, nil
}
