package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oral-health-intake-service/internal/assessment"
)

func TestDefaultQuestions(t *testing.T) {
	qs := DefaultQuestions()
	if len(qs) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(qs))
	}
	if err := qs.Validate(); err != nil {
		t.Errorf("default questions should validate: %v", err)
	}
	if qs[0].Text != "How old is the patient?" || qs[0].Field != assessment.FieldAge {
		t.Errorf("unexpected first question: %+v", qs[0])
	}
	if qs[5].Field != assessment.FieldClinicalFindings {
		t.Errorf("expected last question to target clinical_findings, got %s", qs[5].Field)
	}
}

func TestQuestionSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		qs      QuestionSet
		wantErr bool
	}{
		{"empty", QuestionSet{}, true},
		{"missing text", QuestionSet{{Field: assessment.FieldAge}}, true},
		{"non-extractable target", QuestionSet{{Field: assessment.FieldCalculus, Text: "Calculus?"}}, true},
		{"unknown target", QuestionSet{{Field: "blood_group", Text: "Blood group?"}}, true},
		{"duplicate target", QuestionSet{
			{Field: assessment.FieldAge, Text: "Age?"},
			{Field: assessment.FieldAge, Text: "How old?"},
		}, true},
		{"valid subset", QuestionSet{{Field: assessment.FieldGender, Text: "Gender?"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.qs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuestionSet) {
				t.Errorf("expected ErrInvalidQuestionSet, got %v", err)
			}
		})
	}
}

func TestQuestionSet_Validate_NamesUnknownField(t *testing.T) {
	err := QuestionSet{{Field: "blood_group", Text: "Blood group?"}}.Validate()
	if err == nil || !strings.Contains(err.Error(), `unknown field "blood_group"`) {
		t.Errorf("expected unknown field error, got %v", err)
	}

	err = QuestionSet{{Field: assessment.FieldStains, Text: "Stains?"}}.Validate()
	if err == nil || !strings.Contains(err.Error(), "not an extractable field") {
		t.Errorf("expected not-extractable error for a known field, got %v", err)
	}
}

func TestLoadQuestionSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	content := `questions:
  - field: age
    text: What is the patient's age?
  - field: chief_complaint
    text: Why did the patient come in?
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	qs, err := LoadQuestionSet(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[1].Field != assessment.FieldChiefComplaint || qs[1].Text != "Why did the patient come in?" {
		t.Errorf("unexpected question: %+v", qs[1])
	}
}

func TestLoadQuestionSet_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("questions:\n  - field: stains\n    text: Stains?\n"), 0o600)
	if _, err := LoadQuestionSet(bad); !errors.Is(err, ErrInvalidQuestionSet) {
		t.Errorf("expected ErrInvalidQuestionSet, got %v", err)
	}

	malformed := filepath.Join(dir, "malformed.yaml")
	os.WriteFile(malformed, []byte("questions: [oops"), 0o600)
	if _, err := LoadQuestionSet(malformed); err == nil {
		t.Error("expected parse error")
	}

	if _, err := LoadQuestionSet(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}
