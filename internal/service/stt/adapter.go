// Package stt defines the interface for Speech-to-Text adapters.
package stt

import (
	"context"
	"errors"
)

// Adapter defines the interface for STT providers (AssemblyAI, Google, mock).
type Adapter interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Transcribe converts the audio file at audioPath into transcript text.
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// Close releases provider resources.
	Close() error
}

// ProviderError is a failure reported by the speech service itself, as opposed to
// a transport or client error. Message is the service's own description.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// AsProviderError unwraps err into a *ProviderError if it carries one.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
