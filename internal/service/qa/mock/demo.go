package mock

import (
	"oral-health-intake-service/internal/assessment"
	sttmock "oral-health-intake-service/internal/service/stt/mock"
)

// DemoAnswers holds the expected answer per field for each of
// sttmock.DefaultTranscripts, in the same order.
var DemoAnswers = []map[assessment.Field]string{
	{
		assessment.FieldAge:              "34 years old",
		assessment.FieldGender:           "male",
		assessment.FieldChiefComplaint:   "pain in the lower left back tooth for two weeks",
		assessment.FieldMedicalHistory:   "hypertension, on medication",
		assessment.FieldDentalHistory:    "a filling two years ago",
		assessment.FieldClinicalFindings: "deep caries in tooth 36 with tenderness on percussion",
	},
	{
		assessment.FieldAge:              "52 year old",
		assessment.FieldGender:           "female",
		assessment.FieldChiefComplaint:   "bleeding gums while brushing",
		assessment.FieldMedicalHistory:   "type 2 diabetes",
		assessment.FieldDentalHistory:    "No previous dental treatment",
		assessment.FieldClinicalFindings: "generalized gingival inflammation with heavy calculus deposits",
	},
	{
		assessment.FieldAge:              "8",
		assessment.FieldGender:           "male",
		assessment.FieldChiefComplaint:   "a broken front tooth after a fall",
		assessment.FieldMedicalHistory:   "No relevant medical history",
		assessment.FieldDentalHistory:    "an extraction of a milk tooth last year",
		assessment.FieldClinicalFindings: "an Ellis class two fracture of tooth 11",
	},
}

// NewDemo returns an Answerer that answers the sample dictations of the stt
// mock. fields maps each question text to the form field it fills.
func NewDemo(fields map[string]assessment.Field) *Answerer {
	passages := make(map[string]map[string]string, len(sttmock.DefaultTranscripts))
	for i, transcript := range sttmock.DefaultTranscripts {
		if i >= len(DemoAnswers) {
			break
		}
		byQuestion := make(map[string]string, len(fields))
		for question, f := range fields {
			if ans, ok := DemoAnswers[i][f]; ok {
				byQuestion[question] = ans
			}
		}
		passages[transcript] = byQuestion
	}
	return &Answerer{Passages: passages}
}
