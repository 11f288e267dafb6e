// Package form maps extracted answers onto the assessment form's display slots.
package form

import (
	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/service/extract"
)

// SlotFields are the display slots filled after an audio upload, in order.
// The first MappedSlots come from Map; the treatment plan placeholder is last.
var SlotFields = []assessment.Field{
	assessment.FieldDoctorName,
	assessment.FieldLocation,
	assessment.FieldAge,
	assessment.FieldGender,
	assessment.FieldChiefComplaint,
	assessment.FieldMedicalHistory,
	assessment.FieldDentalHistory,
	assessment.FieldClinicalFindings,
	assessment.FieldReferredTo,
	assessment.FieldCalculus,
	assessment.FieldStains,
	assessment.FieldTreatmentPlan,
}

const (
	MappedSlots  = 11
	DisplaySlots = 12
)

// Slot is one labelled display value.
type Slot struct {
	Field assessment.Field `json:"field"`
	Label string           `json:"label"`
	Value string           `json:"value"`
}

// Map returns the MappedSlots values for doctor, location and the answers.
// Answers are matched by field, so a missing answer leaves its slot empty.
// referred_to, calculus and stains are never filled here.
func Map(answers []extract.Answer, doctorName, location string) []string {
	byField := make(map[assessment.Field]string, len(answers))
	for _, a := range answers {
		if !a.Field.IsExtractable() {
			continue
		}
		if _, dup := byField[a.Field]; !dup {
			byField[a.Field] = a.Text
		}
	}

	values := make([]string, MappedSlots)
	for i, f := range SlotFields[:MappedSlots] {
		switch f {
		case assessment.FieldDoctorName:
			values[i] = doctorName
		case assessment.FieldLocation:
			values[i] = location
		default:
			values[i] = byField[f]
		}
	}
	return values
}

// Populate returns all DisplaySlots values: Map plus an empty treatment plan.
func Populate(answers []extract.Answer, doctorName, location string) []string {
	return append(Map(answers, doctorName, location), "")
}

// Failure fills every display slot with reason.
func Failure(reason string) []string {
	values := make([]string, DisplaySlots)
	for i := range values {
		values[i] = reason
	}
	return values
}

// Label pairs display values with their slot fields and labels.
func Label(values []string) []Slot {
	n := len(values)
	if n > len(SlotFields) {
		n = len(SlotFields)
	}
	slots := make([]Slot, n)
	for i := 0; i < n; i++ {
		slots[i] = Slot{
			Field: SlotFields[i],
			Label: SlotFields[i].Label(),
			Value: values[i],
		}
	}
	return slots
}
