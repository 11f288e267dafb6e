// Package qa defines the interface for extractive question-answering providers.
package qa

import "context"

// Span is the single best answer a provider found in the context.
type Span struct {
	Text  string
	Score float64
}

// Answerer answers one question against a context passage.
type Answerer interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Answer returns the provider's best span for question within passage.
	Answer(ctx context.Context, question, passage string) (Span, error)
}
