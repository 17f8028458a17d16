package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/voxscribe/bootstrap"
	"github.com/kbukum/voxscribe/diarization"
	"github.com/kbukum/voxscribe/pipeline"
	"github.com/kbukum/voxscribe/validation"
)

type transcribeOptions struct {
	format    string
	output    string
	language  string
	noSummary bool
	hints     diarization.Hints
}

func newTranscribeCmd(flags *globalFlags) *cobra.Command {
	var opts transcribeOptions
	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe one audio file and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := newRenderer(opts.format); err != nil {
				return err
			}
			if err := validation.Request(opts.hints); err != nil {
				return err
			}
			cfg, err := loadConfig(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}
			return transcribeFile(cmd.Context(), cfg, args[0], opts, cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "text", "output format: text, srt, vtt, report or json")
	f.StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	f.StringVarP(&opts.language, "language", "l", "", "language code (default from config)")
	f.BoolVar(&opts.noSummary, "no-summary", false, "skip the summary even when a backend is configured")
	f.IntVar(&opts.hints.NumSpeakers, "num-speakers", 0, "exact number of speakers")
	f.IntVar(&opts.hints.MinSpeakers, "min-speakers", 0, "minimum number of speakers")
	f.IntVar(&opts.hints.MaxSpeakers, "max-speakers", 0, "maximum number of speakers")
	return cmd
}

// transcribeFile runs the pipeline once with the same startup checks as
// serve, reporting progress on progress.
func transcribeFile(ctx context.Context, cfg *Config, path string, opts transcribeOptions, progress io.Writer) error {
	render, err := newRenderer(opts.format)
	if err != nil {
		return err
	}
	// stdout carries the transcript.
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	app, err := bootstrap.NewApp(cfg, bootstrap.WithoutSummary())
	if err != nil {
		return err
	}
	svc, err := newService(ctx, cfg, app.Logger)
	if err != nil {
		return err
	}
	for _, c := range svc.components {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	app.OnStop(svc.close)

	return app.RunTask(ctx, func(ctx context.Context) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		result, err := svc.orchestrator.Run(ctx, pipeline.Request{
			FileName:       filepath.Base(path),
			Audio:          data,
			Hints:          opts.hints,
			IncludeSummary: !opts.noSummary,
			Language:       opts.language,
			Observer:       progressObserver(progress),
		})
		if err != nil {
			return err
		}
		out, err := render(result)
		if err != nil {
			return err
		}
		if opts.output == "" {
			_, err = io.WriteString(os.Stdout, out)
			return err
		}
		if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(progress, "Saved %s\n", opts.output)
		return nil
	})
}

// progressObserver prints one line per finished stage.
func progressObserver(w io.Writer) pipeline.StageObserver {
	return func(ev pipeline.Event) {
		switch {
		case ev.State == pipeline.StateDone:
			fmt.Fprintf(w, "Done in %s\n", ev.Elapsed.Round(10*time.Millisecond))
		case ev.State == pipeline.StateSkipped:
			fmt.Fprintf(w, "  %-14s skipped\n", ev.Stage)
		case !ev.Finished:
			fmt.Fprintf(w, "  %-14s ...\n", ev.Stage)
		case ev.State == pipeline.StateFailed:
			fmt.Fprintf(w, "  %-14s failed after %s\n", ev.Stage, ev.Elapsed.Round(10*time.Millisecond))
		default:
			fmt.Fprintf(w, "  %-14s %s\n", ev.Stage, ev.Elapsed.Round(10*time.Millisecond))
		}
	}
}
