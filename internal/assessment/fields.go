// Package assessment defines the oral health assessment record and its form fields.
package assessment

// Field names a single assessment form field. The value doubles as the storage column name.
type Field string

const (
	FieldDoctorName       Field = "doctor_name"
	FieldLocation         Field = "location"
	FieldPatientName      Field = "patient_name"
	FieldAge              Field = "age"
	FieldGender           Field = "gender"
	FieldChiefComplaint   Field = "chief_complaint"
	FieldMedicalHistory   Field = "medical_history"
	FieldDentalHistory    Field = "dental_history"
	FieldClinicalFindings Field = "clinical_findings"
	FieldTreatmentPlan    Field = "treatment_plan"
	FieldReferredTo       Field = "referred_to"
	FieldCalculus         Field = "calculus"
	FieldStains           Field = "stains"

	// FieldSubmissionTimestamp is set by the record store at insert time.
	FieldSubmissionTimestamp Field = "submission_timestamp"
	// FieldID is assigned by the backing store.
	FieldID Field = "id"
)

// ContentFields lists the 13 user-facing fields in form order.
var ContentFields = []Field{
	FieldDoctorName,
	FieldLocation,
	FieldPatientName,
	FieldAge,
	FieldGender,
	FieldChiefComplaint,
	FieldMedicalHistory,
	FieldDentalHistory,
	FieldClinicalFindings,
	FieldTreatmentPlan,
	FieldReferredTo,
	FieldCalculus,
	FieldStains,
}

// ExtractableFields are the fields a question-answering model may fill from a transcript.
var ExtractableFields = []Field{
	FieldAge,
	FieldGender,
	FieldChiefComplaint,
	FieldMedicalHistory,
	FieldDentalHistory,
	FieldClinicalFindings,
}

// ClassificationFields are never filled automatically.
var ClassificationFields = []Field{
	FieldReferredTo,
	FieldCalculus,
	FieldStains,
}

var labels = map[Field]string{
	FieldDoctorName:          "Doctor's Name",
	FieldLocation:            "Location",
	FieldPatientName:         "Patient's Name",
	FieldAge:                 "Age",
	FieldGender:              "Gender",
	FieldChiefComplaint:      "Chief complaint",
	FieldMedicalHistory:      "Medical history",
	FieldDentalHistory:       "Dental history",
	FieldClinicalFindings:    "Clinical Findings",
	FieldTreatmentPlan:       "Treatment plan",
	FieldReferredTo:          "Referred to",
	FieldCalculus:            "Calculus",
	FieldStains:              "Stains",
	FieldSubmissionTimestamp: "Submission Date and Time",
	FieldID:                  "ID",
}

// Label returns the human-readable form label.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// IsExtractable reports whether f can be targeted by a question.
func (f Field) IsExtractable() bool {
	for _, e := range ExtractableFields {
		if e == f {
			return true
		}
	}
	return false
}

// IsClassification reports whether f is chosen by the clinician from a fixed
// list and so is never filled from a transcript.
func (f Field) IsClassification() bool {
	for _, c := range ClassificationFields {
		if c == f {
			return true
		}
	}
	return false
}

// ParseField resolves a column name to a known field.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	if _, ok := labels[f]; ok {
		return f, true
	}
	return "", false
}
