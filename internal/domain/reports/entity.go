package reports

import (
	"time"
)

// ID tipe untuk Report (assigned by the store)
type ReportID int64

// ReportType enum
type ReportType string

const (
	TypeRoutineLab   ReportType = "routine_lab"
	TypeMicrobiology ReportType = "microbiology"
	TypeExamination  ReportType = "examination"
	TypePathology    ReportType = "pathology"
)

// Valid reports whether t is one of the four supported categories.
func (t ReportType) Valid() bool {
	switch t {
	case TypeRoutineLab, TypeMicrobiology, TypeExamination, TypePathology:
		return true
	}
	return false
}

// Submission is the ephemeral per-request payload before normalization.
// Data holds the category-specific fields exactly as submitted.
type Submission struct {
	CardNo        string
	PatientNo     string
	ReportDate    string
	Type          ReportType
	Data          map[string]any
	DeptCode      string
	DeptName      string
	DiagnosisCode string
	DiagnosisName string
}

// Aggregate Root: Report (a persisted, immutable medical report row)
type Report struct {
	ID            ReportID       `json:"id"`
	CardNo        string         `json:"card_no"`
	PatientNo     string         `json:"patient_no,omitempty"`
	Type          ReportType     `json:"report_type"`
	ReportDate    string         `json:"report_date"`
	Data          map[string]any `json:"report_data"`
	DeptCode      string         `json:"dept_code,omitempty"`
	DeptName      string         `json:"dept_name,omitempty"`
	DiagnosisCode string         `json:"diagnosis_code,omitempty"`
	DiagnosisName string         `json:"diagnosis_name,omitempty"`
	Narrative     string         `json:"ai_analysis,omitempty"`
	ProcessedAt   time.Time      `json:"processed_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Summary is the per-row projection returned by the patient-history query.
// KeyFindings is the narrative truncated to its first 100 characters.
type Summary struct {
	ReportID    ReportID   `json:"report_id"`
	ReportDate  string     `json:"report_date"`
	Type        ReportType `json:"report_type"`
	KeyFindings string     `json:"key_findings,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
