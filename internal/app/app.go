package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/config"
	"oral-health-intake-service/internal/events"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/service/audio"
	"oral-health-intake-service/internal/service/export"
	"oral-health-intake-service/internal/service/extract"
	"oral-health-intake-service/internal/service/qa"
	"oral-health-intake-service/internal/service/qa/gemini"
	"oral-health-intake-service/internal/service/qa/huggingface"
	qamock "oral-health-intake-service/internal/service/qa/mock"
	"oral-health-intake-service/internal/service/records"
	"oral-health-intake-service/internal/service/session"
	"oral-health-intake-service/internal/service/stt"
	"oral-health-intake-service/internal/service/stt/assemblyai"
	"oral-health-intake-service/internal/service/stt/google"
	sttmock "oral-health-intake-service/internal/service/stt/mock"
	"oral-health-intake-service/internal/service/transcription"
	"oral-health-intake-service/internal/store"
	"oral-health-intake-service/internal/store/gormstore"
	"oral-health-intake-service/internal/store/postgrest"
)

// Application holds process-wide state for the service. Every external
// client is built here and handed to the components that use it.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Sessions  *session.Manager
	Spool     *audio.Spool
	Records   *records.Service
	Exporter  *export.Exporter
	Publisher *events.Publisher

	stt   stt.Adapter
	store store.Store
}

// New constructs the application and its provider clients from cfg.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}

	questions := extract.DefaultQuestions()
	if cfg.QA.QuestionsFile != "" {
		qs, err := extract.LoadQuestionSet(cfg.QA.QuestionsFile)
		if err != nil {
			return nil, err
		}
		questions = qs
	}

	adapter, err := NewSTTAdapter(ctx, cfg.STT)
	if err != nil {
		return nil, err
	}
	a.stt = adapter

	answerer, err := NewAnswerer(cfg.QA, questions)
	if err != nil {
		a.stt.Close()
		return nil, err
	}

	st, err := NewStore(cfg.Store)
	if err != nil {
		a.stt.Close()
		return nil, err
	}
	a.store = st

	var archiver export.Archiver
	if cfg.Export.S3Bucket != "" {
		s3a, err := export.NewS3Archiver(ctx, cfg.Export.S3Bucket, cfg.Export.S3Prefix)
		if err != nil {
			a.closeClients()
			return nil, err
		}
		archiver = s3a
	}

	a.Publisher = events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicSaved:    cfg.Kafka.TopicSaved,
		TopicExported: cfg.Kafka.TopicExported,
		Principal:     cfg.Kafka.Principal,
	})
	a.Records = records.New(st, a.Publisher)
	a.Exporter = export.New(cfg.Export.Path, archiver, a.Publisher)
	a.Spool = audio.NewSpool(cfg.Audio.UploadDir, audio.Limits{MaxAudioBytes: cfg.Audio.MaxAudioBytes})
	a.Sessions = session.NewManager(session.Deps{
		Transcriber: transcription.New(adapter),
		Extractor:   extract.New(answerer),
		Questions:   questions,
		Records:     a.Records,
		Exporter:    a.Exporter,
		IdleTTL:     cfg.Session.IdleTTL,
		ClosedTTL:   cfg.Session.ClosedTTL,
	})

	a.Logger.Info().
		Str("stt", adapter.Name()).
		Str("qa", answerer.Name()).
		Str("store", cfg.Store.Driver).
		Int("questions", len(questions)).
		Bool("s3Archive", archiver != nil).
		Msg("Oral health intake application created")
	return a, nil
}

// NewSTTAdapter builds the configured speech-to-text provider.
func NewSTTAdapter(ctx context.Context, cfg config.STTConfig) (stt.Adapter, error) {
	switch cfg.Provider {
	case "assemblyai":
		if cfg.APIKey == "" {
			return nil, errors.New("assemblyai provider requires ASSEMBLYAI_API_KEY")
		}
		return assemblyai.New(cfg.APIKey, cfg.BaseURL), nil
	case "google":
		return google.New(ctx, google.Config{
			LanguageCode:  cfg.LanguageCode,
			SampleRateHz:  cfg.SampleRateHz,
			AudioEncoding: cfg.AudioEncoding,
		})
	case "mock", "":
		return sttmock.New(cfg.MockTranscript), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.Provider)
	}
}

// NewAnswerer builds the configured question-answering provider. The mock
// provider answers questions about the sample dictations of the mock STT
// provider.
func NewAnswerer(cfg config.QAConfig, questions extract.QuestionSet) (qa.Answerer, error) {
	switch cfg.Provider {
	case "huggingface":
		return huggingface.New(cfg.BaseURL, cfg.Model, cfg.APIToken), nil
	case "gemini":
		model := cfg.Model
		if model == huggingface.DefaultModel {
			model = ""
		}
		return gemini.New(cfg.BaseURL, model, cfg.APIToken), nil
	case "mock", "":
		fields := make(map[string]assessment.Field, len(questions))
		for _, q := range questions {
			fields[q.Text] = q.Field
		}
		return qamock.NewDemo(fields), nil
	default:
		return nil, fmt.Errorf("unknown QA provider %q", cfg.Provider)
	}
}

// NewStore builds the configured record store.
func NewStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres", "sqlite":
		return gormstore.Open(cfg.Driver, cfg.DSN)
	case "postgrest":
		if cfg.URL == "" || cfg.Key == "" {
			return nil, errors.New("postgrest store requires STORE_URL and STORE_KEY")
		}
		return postgrest.New(cfg.URL, cfg.Key), nil
	default:
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownDriver, cfg.Driver)
	}
}

// Ready reports whether the record store is reachable.
func (a *Application) Ready(ctx context.Context) error {
	return a.Records.Ping(ctx)
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Oral health intake service starting")
	return nil
}

// Shutdown releases provider clients before process exit.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("Oral health intake service shutting down")
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	a.closeClients()
}

func (a *Application) closeClients() {
	if a.stt != nil {
		if err := a.stt.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing STT client")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing record store")
		}
	}
}
