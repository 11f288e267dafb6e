// Package transcription turns an audio file into transcript text through an
// stt.Adapter and reports every failure as a tagged Result instead of an error.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/observability/metrics"
	"oral-health-intake-service/internal/service/stt"
)

// Failure reasons for local precondition checks.
const (
	ReasonFileMissing = "Error: Audio file does not exist."
	ReasonFileEmpty   = "Error: Audio file is empty."
)

// Status is the outcome of a transcription.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// FailureKind classifies a failed transcription.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureValidation FailureKind = "validation"
	FailureProvider   FailureKind = "provider"
	FailureUnexpected FailureKind = "unexpected"
)

// Result is the tagged outcome of Transcribe. Text is set on success, Reason
// and Kind on failure.
type Result struct {
	Status Status
	Text   string
	Reason string
	Kind   FailureKind
}

// Failed reports whether the transcription did not produce text.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

func success(text string) Result {
	return Result{Status: StatusOK, Text: text}
}

func failure(kind FailureKind, reason string) Result {
	return Result{Status: StatusFailed, Reason: reason, Kind: kind}
}

// Service wraps a single STT provider.
type Service struct {
	adapter stt.Adapter
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a transcription service for adapter.
func New(adapter stt.Adapter) *Service {
	return &Service{
		adapter: adapter,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithProvider("transcription", adapter.Name()),
	}
}

// Provider returns the name of the underlying STT provider.
func (s *Service) Provider() string {
	return s.adapter.Name()
}

// Transcribe validates audioPath locally and then makes one provider call.
// It never returns an error or panics; failures are carried in the Result.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = failure(FailureUnexpected, fmt.Sprint(r))
		}
		s.observe(res, time.Since(start))
	}()

	if invalid, ok := validate(audioPath); !ok {
		return invalid
	}

	text, err := s.adapter.Transcribe(ctx, audioPath)
	if err != nil {
		if pe, ok := stt.AsProviderError(err); ok {
			return failure(FailureProvider, pe.Message)
		}
		return failure(FailureUnexpected, err.Error())
	}
	return success(text)
}

func validate(audioPath string) (Result, bool) {
	info, err := os.Stat(audioPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || audioPath == "" {
			return failure(FailureValidation, ReasonFileMissing), false
		}
		return failure(FailureUnexpected, err.Error()), false
	}
	if info.IsDir() {
		return failure(FailureValidation, ReasonFileMissing), false
	}
	if info.Size() == 0 {
		return failure(FailureValidation, ReasonFileEmpty), false
	}
	return Result{}, true
}

func (s *Service) observe(res Result, elapsed time.Duration) {
	outcome := "success"
	if res.Failed() {
		outcome = string(res.Kind)
	}
	s.metrics.RecordTranscription(s.adapter.Name(), outcome, elapsed.Seconds())

	if res.Failed() {
		s.log.Warn().
			Str("kind", string(res.Kind)).
			Str("reason", res.Reason).
			Dur("elapsed", elapsed).
			Msg("transcription failed")
		return
	}
	s.log.Info().
		Int("chars", len(res.Text)).
		Dur("elapsed", elapsed).
		Msg("transcription completed")
	s.log.Debug().Str("transcript", res.Text).Msg("transcript text")
}
