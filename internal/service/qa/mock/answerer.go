// Package mock provides a QA provider backed by a fixed answer table.
package mock

import (
	"context"
	"sync"

	"oral-health-intake-service/internal/service/qa"
)

// Answerer returns Passages[passage][question] when present, else
// Answers[question], else Default.
type Answerer struct {
	Passages map[string]map[string]string
	Answers  map[string]string
	Default  string
	// Err, when set, is returned by Answer.
	Err error

	mu        sync.Mutex
	questions []string
}

func New(answers map[string]string) *Answerer {
	return &Answerer{Answers: answers}
}

func (a *Answerer) Name() string {
	return "mock"
}

func (a *Answerer) Answer(ctx context.Context, question, passage string) (qa.Span, error) {
	if err := ctx.Err(); err != nil {
		return qa.Span{}, err
	}

	a.mu.Lock()
	a.questions = append(a.questions, question)
	a.mu.Unlock()

	if a.Err != nil {
		return qa.Span{}, a.Err
	}
	if ans, ok := a.Passages[passage][question]; ok {
		return qa.Span{Text: ans, Score: 1}, nil
	}
	if ans, ok := a.Answers[question]; ok {
		return qa.Span{Text: ans, Score: 1}, nil
	}
	return qa.Span{Text: a.Default}, nil
}

// Questions returns the questions asked so far, in order.
func (a *Answerer) Questions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.questions...)
}
