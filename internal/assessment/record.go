package assessment

import (
	"strconv"
	"strings"
)

// TableName is the datastore table holding submitted assessments.
const TableName = "oral_health_assessments"

// TimestampLayout is the ISO-8601 layout used for submission timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Record is one persisted oral health assessment.
// The schema is fixed: every stored row exposes exactly these columns.
type Record struct {
	ID                  int64  `json:"id,omitempty" gorm:"column:id;primaryKey;autoIncrement"`
	DoctorName          string `json:"doctor_name" gorm:"column:doctor_name;type:text"`
	Location            string `json:"location" gorm:"column:location;type:text"`
	PatientName         string `json:"patient_name" gorm:"column:patient_name;type:text"`
	Age                 string `json:"age" gorm:"column:age;type:text"`
	Gender              string `json:"gender" gorm:"column:gender;type:text"`
	ChiefComplaint      string `json:"chief_complaint" gorm:"column:chief_complaint;type:text"`
	MedicalHistory      string `json:"medical_history" gorm:"column:medical_history;type:text"`
	DentalHistory       string `json:"dental_history" gorm:"column:dental_history;type:text"`
	ClinicalFindings    string `json:"clinical_findings" gorm:"column:clinical_findings;type:text"`
	TreatmentPlan       string `json:"treatment_plan" gorm:"column:treatment_plan;type:text"`
	ReferredTo          string `json:"referred_to" gorm:"column:referred_to;type:text"`
	Calculus            string `json:"calculus" gorm:"column:calculus;type:text"`
	Stains              string `json:"stains" gorm:"column:stains;type:text"`
	SubmissionTimestamp string `json:"submission_timestamp" gorm:"column:submission_timestamp;type:text"`
}

// TableName maps Record onto the assessments table for gorm.
func (Record) TableName() string {
	return TableName
}

func (r *Record) slot(f Field) *string {
	switch f {
	case FieldDoctorName:
		return &r.DoctorName
	case FieldLocation:
		return &r.Location
	case FieldPatientName:
		return &r.PatientName
	case FieldAge:
		return &r.Age
	case FieldGender:
		return &r.Gender
	case FieldChiefComplaint:
		return &r.ChiefComplaint
	case FieldMedicalHistory:
		return &r.MedicalHistory
	case FieldDentalHistory:
		return &r.DentalHistory
	case FieldClinicalFindings:
		return &r.ClinicalFindings
	case FieldTreatmentPlan:
		return &r.TreatmentPlan
	case FieldReferredTo:
		return &r.ReferredTo
	case FieldCalculus:
		return &r.Calculus
	case FieldStains:
		return &r.Stains
	case FieldSubmissionTimestamp:
		return &r.SubmissionTimestamp
	default:
		return nil
	}
}

// Get returns the value of a field. Unknown fields read as empty.
func (r Record) Get(f Field) string {
	if f == FieldID {
		if r.ID == 0 {
			return ""
		}
		return strconv.FormatInt(r.ID, 10)
	}
	if p := r.slot(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns a text field. It reports false for unknown or non-text fields.
func (r *Record) Set(f Field, v string) bool {
	p := r.slot(f)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Columns returns the record's field names in storage order.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(ContentFields)+2)
	cols = append(cols, string(FieldID))
	for _, f := range ContentFields {
		cols = append(cols, string(f))
	}
	return append(cols, string(FieldSubmissionTimestamp))
}

// Values returns the record's values aligned with Columns.
func (r Record) Values() []string {
	cols := r.Columns()
	vals := make([]string, len(cols))
	for i, c := range cols {
		vals[i] = r.Get(Field(c))
	}
	return vals
}

// ContentMap returns the 13 content fields keyed by field.
func (r Record) ContentMap() map[Field]string {
	m := make(map[Field]string, len(ContentFields))
	for _, f := range ContentFields {
		m[f] = r.Get(f)
	}
	return m
}

// Summary renders the labelled field map in form order, timestamp last.
func (r Record) Summary() string {
	var b strings.Builder
	b.WriteString("{")
	fields := append(append([]Field{}, ContentFields...), FieldSubmissionTimestamp)
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(f.Label()))
		b.WriteString(": ")
		b.WriteString(strconv.Quote(r.Get(f)))
	}
	b.WriteString("}")
	return b.String()
}
