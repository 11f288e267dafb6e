// Package events publishes assessment lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"oral-health-intake-service/internal/models"
	"oral-health-intake-service/internal/observability/metrics"
)

// stream binds one event type to its topic and writer. writer is nil in
// log-only mode.
type stream struct {
	eventType string
	topic     string
	writer    *kafka.Writer
}

// Publisher writes saved and exported events to their own topics.
type Publisher struct {
	saved     stream
	exported  stream
	principal string
	enabled   bool
	metrics   *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicSaved    string
	TopicExported string
	Principal     string
	Enabled       bool
}

// New creates a Kafka event publisher. Without brokers it runs in log-only mode.
func New(cfg *Config) *Publisher {
	if cfg == nil {
		cfg = &Config{}
	}
	p := &Publisher{
		saved:     stream{eventType: models.EventAssessmentSaved, topic: cfg.TopicSaved},
		exported:  stream{eventType: models.EventExportCompleted, topic: cfg.TopicExported},
		principal: cfg.Principal,
		metrics:   metrics.DefaultMetrics,
	}
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, assessment events are logged only")
		return p
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{Dial: dialer.DialFunc}

	p.saved.writer = newWriter(cfg.Brokers, cfg.TopicSaved, transport)
	p.exported.writer = newWriter(cfg.Brokers, cfg.TopicExported, transport)
	p.enabled = true

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSaved", cfg.TopicSaved).
		Str("topicExported", cfg.TopicExported).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")
	return p
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// PublishSaved publishes an assessment.saved event keyed by record id.
func (p *Publisher) PublishSaved(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.saved, key, event)
}

// PublishExported publishes an assessment.exported event keyed by export path.
func (p *Publisher) PublishExported(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.exported, key, event)
}

func (p *Publisher) publish(ctx context.Context, s stream, key string, event any) error {
	start := time.Now()
	logger := log.With().
		Str("topic", s.topic).
		Str("eventType", s.eventType).
		Str("key", key).
		Logger()

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal event")
		return err
	}

	if !p.enabled || s.writer == nil {
		logger.Info().RawJSON("payload", payload).Msg("Assessment event (log-only)")
		p.metrics.RecordKafkaPublish(s.topic, s.eventType, nil, time.Since(start).Seconds())
		return nil
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(s.eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	})
	p.metrics.RecordKafkaPublish(s.topic, s.eventType, err, time.Since(start).Seconds())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write to Kafka")
		return err
	}
	logger.Debug().Msg("Assessment event published")
	return nil
}

// Close flushes and closes both writers.
func (p *Publisher) Close() error {
	var errs []error
	for _, s := range []stream{p.saved, p.exported} {
		if s.writer == nil {
			continue
		}
		if err := s.writer.Close(); err != nil {
			log.Error().Err(err).Str("topic", s.topic).Msg("Error closing Kafka writer")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
