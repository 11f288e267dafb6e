// Package assemblyai provides an AssemblyAI speech-to-text adapter.
package assemblyai

import (
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"oral-health-intake-service/internal/service/stt"
)

const providerName = "assemblyai"

// Adapter implements stt.Adapter on top of the AssemblyAI transcript API.
// The SDK uploads the file, submits a transcript and polls until it settles.
type Adapter struct {
	client *aai.Client
}

// New creates an AssemblyAI adapter. baseURL is optional and only used to point
// the client at a proxy or test server.
func New(apiKey, baseURL string) *Adapter {
	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}
	return &Adapter{client: aai.NewClientWithOptions(opts...)}
}

func (a *Adapter) Name() string {
	return providerName
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio: %w", err)
	}
	defer f.Close()

	transcript, err := a.client.Transcripts.TranscribeFromReader(ctx, f, nil)
	if err != nil {
		return "", err
	}
	return fromTranscript(transcript)
}

// Close is a no-op; the SDK client holds no long-lived connections.
func (a *Adapter) Close() error {
	return nil
}

func fromTranscript(t aai.Transcript) (string, error) {
	if t.Status == aai.TranscriptStatusError {
		msg := aai.ToString(t.Error)
		if msg == "" {
			msg = "transcript failed without an error message"
		}
		return "", &stt.ProviderError{Provider: providerName, Message: msg}
	}
	return aai.ToString(t.Text), nil
}
