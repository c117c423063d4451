package comparison

import (
	"time"

	"github.com/bryanwahyu/medreport-ai/internal/domain/reports"
)

// AnalysisID identifier type
type AnalysisID int64

// Analysis records the outcome of one explicit comparison request. Created
// once, never mutated.
type Analysis struct {
	ID        AnalysisID         `json:"id"`
	CardNo    string             `json:"card_no"`
	PatientNo string             `json:"patient_no,omitempty"`
	Type      reports.ReportType `json:"report_type"`

	CurrentReportID   reports.ReportID `json:"current_report_id"`
	CurrentReportDate string           `json:"current_report_date"`
	CurrentReportData map[string]any   `json:"current_report_data"`

	HistoricalCount int              `json:"historical_reports_count"`
	HistoricalData  []map[string]any `json:"historical_reports_data,omitempty"`
	Period          reports.Window   `json:"comparison_period"`

	Narrative       string              `json:"comparison_analysis"`
	KeyChanges      map[string][]string `json:"key_changes,omitempty"`
	TrendAnalysis   string              `json:"trend_analysis"`
	RiskAssessment  string              `json:"risk_assessment"`
	Recommendations string              `json:"recommendations"`

	Model      string `json:"analysis_model,omitempty"`
	Confidence string `json:"analysis_confidence,omitempty"`
	TokensUsed int    `json:"analysis_tokens_used,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
