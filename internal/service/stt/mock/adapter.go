// Package mock provides a mock STT adapter for running without provider credentials.
// It returns canned dental encounter dictations, cycling through them per call.
package mock

import (
	"context"
	"sync"

	"oral-health-intake-service/internal/service/stt"
)

// DefaultTranscripts are sample encounter dictations.
var DefaultTranscripts = []string{
	"The patient's name is Ravi Kumar. He is 34 years old and male. " +
		"He complains of pain in the lower left back tooth for two weeks. " +
		"Medical history is hypertension, on medication. Previous dental history includes a filling two years ago. " +
		"On examination there is deep caries in tooth 36 with tenderness on percussion.",
	"Patient name is Anita Shah, a 52 year old female. Her chief complaint is bleeding gums while brushing. " +
		"She has type 2 diabetes. No previous dental treatment. " +
		"Clinical findings show generalized gingival inflammation with heavy calculus deposits.",
	"This is Joseph Mathew, age 8, male. He came with a broken front tooth after a fall. " +
		"No relevant medical history. He had an extraction of a milk tooth last year. " +
		"Examination shows an Ellis class two fracture of tooth 11.",
}

var (
	transcriptCounter int
	counterMu         sync.Mutex
)

// Adapter implements stt.Adapter with canned responses.
type Adapter struct {
	// Transcript, when set, is returned for every call instead of the defaults.
	Transcript string
	// Err, when set, is returned by Transcribe.
	Err error

	mu     sync.Mutex
	calls  int
	closed bool
}

// New creates a new mock STT adapter. An empty transcript selects the defaults.
func New(transcript string) *Adapter {
	return &Adapter{Transcript: transcript}
}

func (a *Adapter) Name() string {
	return "mock"
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	if a.Err != nil {
		return "", a.Err
	}
	if a.Transcript != "" {
		return a.Transcript, nil
	}

	counterMu.Lock()
	idx := transcriptCounter % len(DefaultTranscripts)
	transcriptCounter++
	counterMu.Unlock()

	return DefaultTranscripts[idx], nil
}

// Calls reports how many times Transcribe was invoked.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

var _ stt.Adapter = (*Adapter)(nil)
