// Package api serves the transcription endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/auth/authctx"
	"github.com/kbukum/voxscribe/diarization"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/pipeline"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/validation"
)

// SuccessMessage is the message of a completed transcription.
const SuccessMessage = "Transcription completed successfully"

const bytesPerMB = 1024 * 1024

// Runner runs one upload through the pipeline.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Handler answers POST /transcribe.
type Handler struct {
	runner    Runner
	log       *logger.Logger
	maxSizeMB float64
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(log *logger.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithMaxSizeMB rejects uploads above maxMB before the pipeline runs.
func WithMaxSizeMB(maxMB float64) Option {
	return func(h *Handler) { h.maxSizeMB = maxMB }
}

// NewHandler creates a Handler over runner.
func NewHandler(runner Runner, opts ...Option) *Handler {
	h := &Handler{runner: runner, log: logger.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithComponent("api")
	return h
}

// Register mounts the endpoint on r behind the given middleware.
func (h *Handler) Register(r gin.IRoutes, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.Transcribe)
	r.POST("/transcribe", handlers...)
}

// form holds the optional multipart fields of a transcription request.
type form struct {
	NumSpeakers      int    `form:"num_speakers" validate:"omitempty,gte=1"`
	MinSpeakers      int    `form:"min_speakers" validate:"omitempty,gte=1"`
	MaxSpeakers      int    `form:"max_speakers" validate:"omitempty,gte=1"`
	Language         string `form:"language" validate:"omitempty,max=16"`
	IncludeSummary   string `form:"include_summary"`
	DetailedSegments string `form:"detailed_segments"`
}

func (f form) hints() diarization.Hints {
	return diarization.Hints{NumSpeakers: f.NumSpeakers, MinSpeakers: f.MinSpeakers, MaxSpeakers: f.MaxSpeakers}
}

// flag reads a "true"/"false" field, case-insensitively. Anything other
// than "true" is false.
func flag(v, def string) bool {
	if v == "" {
		v = def
	}
	return strings.EqualFold(v, "true")
}

// Transcribe handles one multipart upload.
func (h *Handler) Transcribe(c *gin.Context) {
	requestStart := time.Now()
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	data, name, err := h.readUpload(c)
	if err != nil {
		server.RespondWithError(c, log, err)
		return
	}
	uploadTime := time.Since(requestStart)

	var f form
	if err := c.ShouldBind(&f); err != nil {
		server.RespondAppError(c, apperrors.InvalidInput("form", err.Error()))
		return
	}
	if err := validation.Request(f); err != nil {
		server.RespondWithError(c, log, err)
		return
	}

	log.Info("transcription requested", logger.Fields(
		logger.FieldFile, name,
		"size_mb", round2(float64(len(data))/bytesPerMB),
		"subject", authctx.Subject(ctx),
	))

	result, err := h.runner.Run(ctx, pipeline.Request{
		FileName:       name,
		Audio:          data,
		Hints:          f.hints(),
		IncludeSummary: flag(f.IncludeSummary, "true"),
		Language:       f.Language,
	})
	if err != nil {
		server.RespondWithError(c, log, boundaryError(err))
		return
	}

	formatStart := time.Now()
	text := transcript.SpeakerTranscript(result.Segments)
	formatTime := time.Since(formatStart)

	resp := newResponse(result, text, timingsExtra{
		upload:       uploadTime,
		formatting:   formatTime,
		requestTotal: time.Since(requestStart),
	})
	if flag(f.DetailedSegments, "false") {
		resp.Segments = result.Segments
	}
	server.RespondOK(c, SuccessMessage, resp)
}

// readUpload reads the "file" part into memory.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			limit := float64(tooLarge.Limit) / bytesPerMB
			return nil, "", apperrors.AudioSize(limit, limit).WithCause(err)
		}
		return nil, "", apperrors.New(apperrors.ErrCodeMissingField, "No file provided", http.StatusBadRequest).
			WithDetail("field", "file")
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return nil, "", apperrors.AudioFile("Empty filename")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", apperrors.AudioFile("Unable to read upload").WithCause(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", apperrors.AudioFile("Unable to read upload").WithCause(err)
	}

	if len(data) == 0 {
		return nil, "", apperrors.AudioFile("File is empty")
	}
	if sizeMB := float64(len(data)) / bytesPerMB; h.maxSizeMB > 0 && sizeMB > h.maxSizeMB {
		return nil, "", apperrors.New(apperrors.ErrCodeAudioSize,
			fmt.Sprintf("File too large: %.1fMB. Maximum: %gMB", sizeMB, h.maxSizeMB),
			http.StatusRequestEntityTooLarge).
			WithDetail("size_mb", sizeMB).
			WithDetail("max_size_mb", h.maxSizeMB)
	}
	return data, fh.Filename, nil
}

// boundaryError rewrites stage failures into the messages API clients
// expect. Input errors and anything unclassified pass through.
func boundaryError(err error) error {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return err
	}
	switch appErr.Code {
	case apperrors.ErrCodeDiarization:
		return apperrors.New(appErr.Code, "Speaker diarization failed: "+causeMessage(appErr), appErr.HTTPStatus).
			WithCause(appErr.Cause)
	case apperrors.ErrCodeTranscription:
		return apperrors.New(appErr.Code, "Transcription failed: "+causeMessage(appErr), appErr.HTTPStatus).
			WithCause(appErr.Cause)
	}
	return appErr
}

func causeMessage(appErr *apperrors.AppError) string {
	if appErr.Cause == nil {
		return appErr.Message
	}
	if inner, ok := apperrors.AsAppError(appErr.Cause); ok {
		return inner.Message
	}
	return appErr.Cause.Error()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
