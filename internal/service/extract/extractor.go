// Package extract asks a question set of a transcript through a QA provider.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/observability/metrics"
	"oral-health-intake-service/internal/service/qa"
)

// Answer is the provider's span for one question.
type Answer struct {
	Field    assessment.Field
	Question string
	Text     string
	Score    float64
}

// Extractor runs a question set against one QA provider.
type Extractor struct {
	answerer qa.Answerer
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func New(answerer qa.Answerer) *Extractor {
	return &Extractor{
		answerer: answerer,
		metrics:  metrics.DefaultMetrics,
		log:      logging.WithProvider("extract", answerer.Name()),
	}
}

// Provider returns the name of the underlying QA provider.
func (e *Extractor) Provider() string {
	return e.answerer.Name()
}

// Extract asks every question in order and returns one answer per question.
// The first provider error stops extraction.
func (e *Extractor) Extract(ctx context.Context, questions QuestionSet, passage string) ([]Answer, error) {
	start := time.Now()
	answers := make([]Answer, 0, len(questions))

	for i, q := range questions {
		span, err := e.answerer.Answer(ctx, q.Text, passage)
		if err != nil {
			err = fmt.Errorf("answering question %d (%s): %w", i, q.Field, err)
			e.metrics.RecordExtraction(e.answerer.Name(), len(answers), err, time.Since(start).Seconds())
			e.log.Error().Err(err).Int("answered", len(answers)).Msg("extraction failed")
			return nil, err
		}
		answers = append(answers, Answer{
			Field:    q.Field,
			Question: q.Text,
			Text:     span.Text,
			Score:    span.Score,
		})
		e.log.Debug().
			Str("field", string(q.Field)).
			Str("answer", span.Text).
			Float64("score", span.Score).
			Msg("question answered")
	}

	elapsed := time.Since(start)
	e.metrics.RecordExtraction(e.answerer.Name(), len(answers), nil, elapsed.Seconds())
	e.log.Info().Int("answers", len(answers)).Dur("elapsed", elapsed).Msg("extraction completed")
	return answers, nil
}
