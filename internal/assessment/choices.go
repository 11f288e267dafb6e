package assessment

// Fixed choice sets offered by the form. Values must stay verbatim for compatibility
// with records already stored.
var (
	ReferredToChoices = []string{
		"None",
		"Oral Medicine and Radiology",
		"Periodontics",
		"Oral Surgery",
		"Conservative and Endodontics",
		"Prosthodontics",
		"Pedodontics",
		"Orthodontics",
	}

	SeverityChoices = []string{"+", "++", "+++"}

	TreatmentPlanChoices = []string{
		"Scaling",
		"Filling",
		"Pulp therapy/RCT",
		"Extraction",
		"Medication",
	}
)

// Choices returns the allowed values for an enumerated field, or nil for free text.
func Choices(f Field) []string {
	switch f {
	case FieldReferredTo:
		return ReferredToChoices
	case FieldCalculus, FieldStains:
		return SeverityChoices
	case FieldTreatmentPlan:
		return TreatmentPlanChoices
	default:
		return nil
	}
}
