// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"oral-health-intake-service/internal/service/stt"
)

const providerName = "google"

// InlineLimitBytes is the largest recording the API accepts as inline
// content. Longer files would need a Cloud Storage URI.
const InlineLimitBytes = 10 << 20

// Config holds recognition settings sent with every request.
type Config struct {
	LanguageCode  string
	SampleRateHz  int
	AudioEncoding string
}

// DefaultConfig returns the recognition settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		LanguageCode:  "en-US",
		SampleRateHz:  16000,
		AudioEncoding: "LINEAR16",
	}
}

// Adapter implements stt.Adapter using Google Cloud Speech-to-Text.
type Adapter struct {
	client *speech.Client
	cfg    Config
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating speech client: %w", err)
	}
	return &Adapter{client: c, cfg: cfg}, nil
}

func (a *Adapter) Name() string {
	return providerName
}

// Transcribe sends the whole file as one long-running recognition and waits
// for it. Long-running requests accept recordings over a minute; the inline
// content limit still applies.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	if err := checkInline(len(data)); err != nil {
		return "", err
	}

	op, err := a.client.LongRunningRecognize(ctx, recognizeRequest(a.cfg, data))
	if err != nil {
		return "", classify(err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return "", classify(err)
	}

	return joinTranscript(resp.GetResults()), nil
}

func checkInline(n int) error {
	if n > InlineLimitBytes {
		return &stt.ProviderError{
			Provider: providerName,
			Message:  fmt.Sprintf("audio is %d bytes; inline recognition accepts at most %d", n, InlineLimitBytes),
		}
	}
	return nil
}

// Close closes the underlying client connection.
func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

func recognizeRequest(cfg Config, audio []byte) *speechpb.LongRunningRecognizeRequest {
	return &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   parseAudioEncoding(cfg.AudioEncoding),
			SampleRateHertz:            int32(cfg.SampleRateHz),
			LanguageCode:               cfg.LanguageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
}

// joinTranscript concatenates the top alternative of every result.
func joinTranscript(results []*speechpb.SpeechRecognitionResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if len(r.GetAlternatives()) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.GetAlternatives()[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// classify turns request rejections by the service into stt.ProviderError.
// Transport and auth failures stay plain errors.
func classify(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange, codes.NotFound:
		return &stt.ProviderError{Provider: providerName, Message: st.Message()}
	default:
		return err
	}
}

func parseAudioEncoding(s string) speechpb.RecognitionConfig_AudioEncoding {
	if v, ok := speechpb.RecognitionConfig_AudioEncoding_value[s]; ok {
		return speechpb.RecognitionConfig_AudioEncoding(v)
	}
	return speechpb.RecognitionConfig_LINEAR16
}
