package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Service       ServiceConfig
	STT           STTConfig
	QA            QAConfig
	Store         StoreConfig
	Export        ExportConfig
	Audio         AudioConfig
	Session       SessionConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name        string
	Env         string
	HTTPPort    string
	GRPCPort    string
	MetricsAddr string

	ShutdownTimeout time.Duration
}

type STTConfig struct {
	Provider       string // mock, google, assemblyai
	APIKey         string
	BaseURL        string
	LanguageCode   string
	SampleRateHz   int
	AudioEncoding  string
	MockTranscript string
}

type QAConfig struct {
	Provider      string // mock, huggingface, gemini
	Model         string
	APIToken      string
	BaseURL       string
	QuestionsFile string
}

type StoreConfig struct {
	Driver string // sqlite, postgres, postgrest
	DSN    string
	URL    string
	Key    string
}

type ExportConfig struct {
	Path     string
	S3Bucket string
	S3Prefix string
}

type AudioConfig struct {
	UploadDir     string
	MaxAudioBytes int64
}

// SessionConfig bounds how long idle and closed sessions are kept.
type SessionConfig struct {
	IdleTTL       time.Duration
	ClosedTTL     time.Duration
	SweepInterval time.Duration
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicSaved    string
	TopicExported string
	Principal     string
}

type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-oral-health-intake")

	return &Config{
		Service: ServiceConfig{
			Name:        principal,
			Env:         envOrDefault("ENV", "dev"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),

			ShutdownTimeout: envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		STT: STTConfig{
			Provider: envOrDefault("STT_PROVIDER", "mock"),
			// "Assembly" is the variable name used by earlier deployments.
			APIKey:         envOrDefault("ASSEMBLYAI_API_KEY", os.Getenv("Assembly")),
			BaseURL:        envOrDefault("STT_BASE_URL", ""),
			LanguageCode:   envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000),
			AudioEncoding:  envOrDefault("STT_AUDIO_ENCODING", "LINEAR16"),
			MockTranscript: envOrDefault("STT_MOCK_TRANSCRIPT", ""),
		},
		QA: QAConfig{
			Provider:      envOrDefault("QA_PROVIDER", "mock"),
			Model:         envOrDefault("QA_MODEL", "distilbert-base-cased-distilled-squad"),
			APIToken:      envOrDefault("QA_API_TOKEN", ""),
			BaseURL:       envOrDefault("QA_BASE_URL", ""),
			QuestionsFile: envOrDefault("QUESTIONS_FILE", ""),
		},
		Store: StoreConfig{
			Driver: envOrDefault("STORE_DRIVER", "sqlite"),
			DSN:    envOrDefault("STORE_DSN", "file:intake.db?cache=shared"),
			URL:    envOrDefault("STORE_URL", os.Getenv("DBUrl")),
			Key:    envOrDefault("STORE_KEY", os.Getenv("DBKey")),
		},
		Export: ExportConfig{
			Path:     envOrDefault("EXPORT_PATH", "oral_health_assessments.csv"),
			S3Bucket: envOrDefault("EXPORT_S3_BUCKET", ""),
			S3Prefix: envOrDefault("EXPORT_S3_PREFIX", "exports/"),
		},
		Audio: AudioConfig{
			UploadDir:     envOrDefault("AUDIO_UPLOAD_DIR", os.TempDir()),
			MaxAudioBytes: envOrDefaultInt64("AUDIO_MAX_BYTES", 100*1024*1024),
		},
		Session: SessionConfig{
			IdleTTL:       envOrDefaultDuration("SESSION_IDLE_TTL", 30*time.Minute),
			ClosedTTL:     envOrDefaultDuration("SESSION_CLOSED_TTL", time.Hour),
			SweepInterval: envOrDefaultDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultList("KAFKA_BROKERS", nil),
			TopicSaved:    envOrDefault("KAFKA_TOPIC_SAVED", "assessment.saved"),
			TopicExported: envOrDefault("KAFKA_TOPIC_EXPORTED", "assessment.exported"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
			LogFile:   envOrDefault("LOG_FILE", ""),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
