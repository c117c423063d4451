package patients

import (
	"time"

	"github.com/bryanwahyu/medreport-ai/internal/domain/reports"
)

// Slot names one of the four free-text report columns on a patient_info row.
type Slot string

const (
	SlotLabDetail    Slot = "lis_result_detail"
	SlotPathology    Slot = "pathology_reports"
	SlotImaging      Slot = "pacs_reports"
	SlotMicrobiology Slot = "microbiological_reports"
)

// SlotFor maps a report category onto its historical-snapshot slot.
func SlotFor(t reports.ReportType) Slot {
	switch t {
	case reports.TypeMicrobiology:
		return SlotMicrobiology
	case reports.TypeExamination:
		return SlotImaging
	case reports.TypePathology:
		return SlotPathology
	default:
		return SlotLabDetail
	}
}

// Snapshot is the most recent ancillary free-text record for a patient and
// slot. It is a query projection; the core never writes it.
type Snapshot struct {
	ID          int64     `json:"id"`
	CardNo      string    `json:"card_no"`
	PatientName string    `json:"patient_name,omitempty"`
	RegDate     string    `json:"reg_date"`
	Content     string    `json:"report_content"`
	Slot        Slot      `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
