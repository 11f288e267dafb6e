package mock

import (
	"context"
	"strings"
	"testing"

	"oral-health-intake-service/internal/assessment"
	sttmock "oral-health-intake-service/internal/service/stt/mock"
)

func TestAnswerer_PassageAnswersTakePrecedence(t *testing.T) {
	a := &Answerer{
		Passages: map[string]map[string]string{"p1": {"q": "from passage"}},
		Answers:  map[string]string{"q": "from table"},
		Default:  "fallback",
	}
	ctx := context.Background()

	if span, _ := a.Answer(ctx, "q", "p1"); span.Text != "from passage" {
		t.Errorf("expected 'from passage', got %q", span.Text)
	}
	if span, _ := a.Answer(ctx, "q", "p2"); span.Text != "from table" {
		t.Errorf("expected 'from table', got %q", span.Text)
	}
	if span, _ := a.Answer(ctx, "other", "p2"); span.Text != "fallback" {
		t.Errorf("expected 'fallback', got %q", span.Text)
	}
}

func TestNewDemo_AnswersSampleDictations(t *testing.T) {
	a := NewDemo(map[string]assessment.Field{
		"How old?":       assessment.FieldAge,
		"Findings?":      assessment.FieldClinicalFindings,
		"Treatment plan": assessment.FieldTreatmentPlan,
	})
	ctx := context.Background()

	for i, transcript := range sttmock.DefaultTranscripts {
		want := DemoAnswers[i]
		for question, field := range map[string]assessment.Field{"How old?": assessment.FieldAge, "Findings?": assessment.FieldClinicalFindings} {
			span, err := a.Answer(ctx, question, transcript)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if span.Text != want[field] {
				t.Errorf("transcript %d %s: expected %q, got %q", i, field, want[field], span.Text)
			}
			if !strings.Contains(transcript, span.Text) {
				t.Errorf("transcript %d: answer %q is not a span of the dictation", i, span.Text)
			}
		}
		if span, _ := a.Answer(ctx, "Treatment plan", transcript); span.Text != "" {
			t.Errorf("expected no answer for a non-extractable field, got %q", span.Text)
		}
	}

	if span, _ := a.Answer(ctx, "How old?", "an unrelated dictation"); span.Text != "" {
		t.Errorf("expected empty answer for an unknown passage, got %q", span.Text)
	}
}
