package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"oral-health-intake-service/internal/service/stt"
	"oral-health-intake-service/internal/service/stt/mock"
)

type panicAdapter struct{}

func (panicAdapter) Name() string { return "panic" }
func (panicAdapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	panic("decoder crashed")
}
func (panicAdapter) Close() error { return nil }

func writeAudio(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encounter.wav")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing audio: %v", err)
	}
	return path
}

func TestTranscribe_Success(t *testing.T) {
	adapter := mock.New("Patient is 34, male.")
	svc := New(adapter)

	res := svc.Transcribe(context.Background(), writeAudio(t, []byte("RIFF")))

	if res.Failed() {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Text != "Patient is 34, male." {
		t.Errorf("unexpected text: %q", res.Text)
	}
	if res.Kind != FailureNone {
		t.Errorf("expected no failure kind, got %s", res.Kind)
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	adapter := mock.New("x")
	svc := New(adapter)

	res := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))

	if !res.Failed() || res.Kind != FailureValidation {
		t.Fatalf("expected validation failure, got %+v", res)
	}
	if res.Reason != "Error: Audio file does not exist." {
		t.Errorf("unexpected reason: %q", res.Reason)
	}
	if adapter.Calls() != 0 {
		t.Error("expected no provider call for a missing file")
	}
}

func TestTranscribe_EmptyPath(t *testing.T) {
	res := New(mock.New("x")).Transcribe(context.Background(), "")

	if res.Reason != ReasonFileMissing {
		t.Errorf("expected missing-file reason for empty path, got %q", res.Reason)
	}
}

func TestTranscribe_EmptyFile(t *testing.T) {
	adapter := mock.New("x")
	svc := New(adapter)

	res := svc.Transcribe(context.Background(), writeAudio(t, nil))

	if !res.Failed() || res.Kind != FailureValidation {
		t.Fatalf("expected validation failure, got %+v", res)
	}
	if res.Reason != "Error: Audio file is empty." {
		t.Errorf("unexpected reason: %q", res.Reason)
	}
	if adapter.Calls() != 0 {
		t.Error("expected no provider call for an empty file")
	}
}

func TestTranscribe_ProviderError(t *testing.T) {
	adapter := mock.New("")
	adapter.Err = &stt.ProviderError{Provider: "assemblyai", Message: "Transcoding failed"}

	res := New(adapter).Transcribe(context.Background(), writeAudio(t, []byte("RIFF")))

	if res.Kind != FailureProvider {
		t.Fatalf("expected provider failure, got %+v", res)
	}
	if res.Reason != "Transcoding failed" {
		t.Errorf("expected provider message as reason, got %q", res.Reason)
	}
}

func TestTranscribe_UnexpectedError(t *testing.T) {
	adapter := mock.New("")
	adapter.Err = errors.New("dial tcp: connection refused")

	res := New(adapter).Transcribe(context.Background(), writeAudio(t, []byte("RIFF")))

	if res.Kind != FailureUnexpected {
		t.Fatalf("expected unexpected failure, got %+v", res)
	}
	if res.Reason != "dial tcp: connection refused" {
		t.Errorf("expected error string as reason, got %q", res.Reason)
	}
}

func TestTranscribe_RecoversFromPanic(t *testing.T) {
	res := New(panicAdapter{}).Transcribe(context.Background(), writeAudio(t, []byte("RIFF")))

	if res.Kind != FailureUnexpected || res.Reason != "decoder crashed" {
		t.Errorf("expected recovered panic as unexpected failure, got %+v", res)
	}
}

func TestResult_FailedIsNotTextBased(t *testing.T) {
	// A transcript that happens to contain the word Error is still a success.
	res := success("Error in the previous filling was noted")
	if res.Failed() {
		t.Error("expected success result regardless of text content")
	}
}
