// Package models defines the event payloads published for assessments.
// Payloads carry no patient content.
package models

const (
	EventAssessmentSaved = "assessment.saved"
	EventExportCompleted = "assessment.exported"
)

// AssessmentSaved is published after a record is inserted.
type AssessmentSaved struct {
	EventType           string `json:"eventType"`
	RecordID            int64  `json:"recordId,omitempty"`
	DoctorName          string `json:"doctorName"`
	Location            string `json:"location"`
	SubmissionTimestamp string `json:"submissionTimestamp"`
	Timestamp           int64  `json:"timestamp"`
}

// ExportCompleted is published after a CSV export is written.
type ExportCompleted struct {
	EventType  string `json:"eventType"`
	Rows       int    `json:"rows"`
	Path       string `json:"path"`
	ArchiveKey string `json:"archiveKey,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}
