package extract

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"oral-health-intake-service/internal/assessment"
)

var ErrInvalidQuestionSet = errors.New("invalid question set")

// Question is a natural-language question paired with the form field its
// answer fills.
type Question struct {
	Field assessment.Field `yaml:"field"`
	Text  string           `yaml:"text"`
}

// QuestionSet is the ordered list of questions asked of every transcript.
type QuestionSet []Question

// DefaultQuestions returns the standard intake questions.
func DefaultQuestions() QuestionSet {
	return QuestionSet{
		{Field: assessment.FieldAge, Text: "How old is the patient?"},
		{Field: assessment.FieldGender, Text: "What is the gender?"},
		{Field: assessment.FieldChiefComplaint, Text: "What is the chief complaint regarding the patient's oral health?"},
		{Field: assessment.FieldMedicalHistory, Text: "List the Medical history mentioned"},
		{Field: assessment.FieldDentalHistory, Text: "Give the Dental history in detail"},
		{Field: assessment.FieldClinicalFindings, Text: "Please give all the clinical findings which were listed"},
	}
}

type questionFile struct {
	Questions QuestionSet `yaml:"questions"`
}

// LoadQuestionSet reads a YAML question set of the form
//
//	questions:
//	  - field: age
//	    text: How old is the patient?
func LoadQuestionSet(path string) (QuestionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question set: %w", err)
	}

	var qf questionFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing question set %s: %w", path, err)
	}
	if err := qf.Questions.Validate(); err != nil {
		return nil, err
	}
	return qf.Questions, nil
}

// Validate checks that every question targets a distinct extractable field.
func (qs QuestionSet) Validate() error {
	if len(qs) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuestionSet)
	}
	seen := make(map[assessment.Field]bool, len(qs))
	for i, q := range qs {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuestionSet, i)
		}
		if _, ok := assessment.ParseField(string(q.Field)); !ok {
			return fmt.Errorf("%w: question %d targets unknown field %q", ErrInvalidQuestionSet, i, q.Field)
		}
		if !q.Field.IsExtractable() {
			return fmt.Errorf("%w: question %d targets %q, which is not an extractable field", ErrInvalidQuestionSet, i, q.Field)
		}
		if seen[q.Field] {
			return fmt.Errorf("%w: field %q is targeted more than once", ErrInvalidQuestionSet, q.Field)
		}
		seen[q.Field] = true
	}
	return nil
}
