// Package records inserts assessments into the record store and reads them back.
package records

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/models"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/observability/metrics"
	"oral-health-intake-service/internal/schema"
	"oral-health-intake-service/internal/store"
)

// EventPublisher receives an event for every saved assessment.
type EventPublisher interface {
	PublishSaved(ctx context.Context, key string, event any) error
}

// Confirmation describes an inserted record.
type Confirmation struct {
	Record assessment.Record
	Fields map[assessment.Field]string
}

// Message is the user-facing save outcome.
func (c Confirmation) Message() string {
	return "Saved answers: " + c.Record.Summary()
}

type Service struct {
	store     store.Store
	validator *schema.Validator
	publisher EventPublisher
	now       func() time.Time
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// New creates a records service. publisher may be nil.
func New(st store.Store, publisher EventPublisher) *Service {
	return &Service{
		store:     st,
		validator: schema.New(),
		publisher: publisher,
		now:       time.Now,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("records"),
	}
}

// Insert stamps rec with the current time and writes it in one store call.
// There is no retry.
func (s *Service) Insert(ctx context.Context, rec assessment.Record) (Confirmation, error) {
	if err := s.validator.Validate(rec); err != nil {
		s.metrics.RecordStoreOperation("insert", err, 0)
		return Confirmation{}, err
	}

	rec.ID = 0
	rec.SubmissionTimestamp = s.now().Format(assessment.TimestampLayout)

	start := time.Now()
	err := s.store.Insert(ctx, &rec)
	s.metrics.RecordStoreOperation("insert", err, time.Since(start).Seconds())
	if err != nil {
		s.log.Error().Err(err).Msg("assessment insert failed")
		return Confirmation{}, err
	}

	s.log.Info().
		Int64("recordId", rec.ID).
		Str("submissionTimestamp", rec.SubmissionTimestamp).
		Msg("assessment saved")

	s.publishSaved(ctx, rec)

	fields := rec.ContentMap()
	fields[assessment.FieldSubmissionTimestamp] = rec.SubmissionTimestamp
	return Confirmation{Record: rec, Fields: fields}, nil
}

// A publish failure is logged; the record is already stored.
func (s *Service) publishSaved(ctx context.Context, rec assessment.Record) {
	if s.publisher == nil {
		return
	}
	event := models.AssessmentSaved{
		EventType:           models.EventAssessmentSaved,
		RecordID:            rec.ID,
		DoctorName:          rec.DoctorName,
		Location:            rec.Location,
		SubmissionTimestamp: rec.SubmissionTimestamp,
		Timestamp:           s.now().UnixMilli(),
	}
	if err := s.publisher.PublishSaved(ctx, strconv.FormatInt(rec.ID, 10), event); err != nil {
		s.log.Warn().Err(err).Int64("recordId", rec.ID).Msg("failed to publish saved event")
	}
}

// FetchAll returns every stored record, or nil when there are none.
func (s *Service) FetchAll(ctx context.Context) ([]assessment.Record, error) {
	start := time.Now()
	recs, err := s.store.FetchAll(ctx)
	s.metrics.RecordStoreOperation("fetch_all", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	s.log.Debug().Int("rows", len(recs)).Msg("fetched assessments")
	return recs, nil
}

// Ping reports whether the record store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
