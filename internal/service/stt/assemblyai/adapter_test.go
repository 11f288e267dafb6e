package assemblyai

import (
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"oral-health-intake-service/internal/service/stt"
)

func strPtr(s string) *string { return &s }

func TestFromTranscript_Completed(t *testing.T) {
	text, err := fromTranscript(aai.Transcript{
		Status: aai.TranscriptStatusCompleted,
		Text:   strPtr("Patient is 34, male, complains of toothache."),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "Patient is 34, male, complains of toothache." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestFromTranscript_ErrorStatusIsProviderError(t *testing.T) {
	_, err := fromTranscript(aai.Transcript{
		Status: aai.TranscriptStatusError,
		Error:  strPtr("Transcoding failed. File does not appear to contain audio."),
	})

	pe, ok := stt.AsProviderError(err)
	if !ok {
		t.Fatalf("expected provider error, got %v", err)
	}
	if pe.Message != "Transcoding failed. File does not appear to contain audio." {
		t.Errorf("expected service message to be preserved, got %q", pe.Message)
	}
	if pe.Provider != "assemblyai" {
		t.Errorf("expected provider 'assemblyai', got %s", pe.Provider)
	}
}

func TestFromTranscript_ErrorStatusWithoutMessage(t *testing.T) {
	_, err := fromTranscript(aai.Transcript{Status: aai.TranscriptStatusError})

	pe, ok := stt.AsProviderError(err)
	if !ok {
		t.Fatalf("expected provider error, got %v", err)
	}
	if pe.Message == "" {
		t.Error("expected a fallback message")
	}
}

func TestAdapter_Name(t *testing.T) {
	if New("key", "").Name() != "assemblyai" {
		t.Error("expected provider name 'assemblyai'")
	}
}
