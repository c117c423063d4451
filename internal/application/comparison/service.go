package comparison

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bryanwahyu/medreport-ai/internal/application"
	aidom "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
	domain "github.com/bryanwahyu/medreport-ai/internal/domain/comparison"
	"github.com/bryanwahyu/medreport-ai/internal/domain/reports"
)

// Fixed texts returned when the window holds no historical rows. The call
// still succeeds; there is simply nothing to compare against.
const (
	noHistoryNarrative       = "No historical report data is available for comparison."
	noHistoryTrend           = "No historical data"
	noHistoryRisk            = "Cannot assess without historical context"
	noHistoryRecommendations = "Accumulate more historical reports for trend analysis"
)

// emptyKeyChanges mirrors the bucket shape of a generated comparison so the
// key_changes response field is always an object, never null.
func emptyKeyChanges() map[string][]string {
	return map[string][]string{
		"significant_changes": {},
		"trends":              {},
		"abnormal_values":     {},
		"recommendations":     {},
	}
}

// Service implements the explicit report-comparison use-case.
type Service struct {
	Reports     reports.Repository
	Comparisons domain.Repository
	AI          aidom.Client
	Clock       application.Clock
}

type CompareCommand struct {
	CardNo   string
	Type     reports.ReportType
	ReportID reports.ReportID
	Period   reports.Window
}

// Outcome is rendered into the comparison response envelope.
type Outcome struct {
	Code            string
	Status          int // HTTP status for the boundary
	CardNo          string
	ReportID        reports.ReportID
	Period          reports.Window
	HistoricalCount int
	Narrative       string
	KeyChanges      map[string][]string
	TrendAnalysis   string
	RiskAssessment  string
	Recommendations string
	Model           string
	Confidence      string
	ProcessedAt     time.Time
	Err             string
}

func (s *Service) failure(cmd CompareCommand, at time.Time, status int, msg string) Outcome {
	return Outcome{
		Code:        "500",
		Status:      status,
		CardNo:      cmd.CardNo,
		ReportID:    cmd.ReportID,
		Period:      cmd.Period,
		ProcessedAt: at,
		Err:         msg,
	}
}

// Compare loads the current report, gathers same-category history inside the
// window, and asks the generator for a structured comparison. The persisted
// analysis row is best-effort; a write failure does not fail the call.
func (s *Service) Compare(ctx context.Context, cmd CompareCommand) Outcome {
	now := s.Clock.Now()
	if cmd.Period == "" {
		cmd.Period = reports.DefaultWindow
	}

	current, err := s.Reports.Get(ctx, cmd.Type, cmd.ReportID)
	if err != nil || current == nil || current.CardNo != cmd.CardNo {
		return s.failure(cmd, now, http.StatusNotFound, "current report not found")
	}

	cutoff := cmd.Period.Cutoff(now)
	history, err := s.Reports.HistoryByType(ctx, cmd.CardNo, cmd.Type, cutoff, cmd.ReportID)
	if err != nil {
		log.Printf("loading history for card %s: %v", cmd.CardNo, err)
		return s.failure(cmd, now, http.StatusInternalServerError, "failed to load historical reports")
	}

	if len(history) == 0 {
		return Outcome{
			Code:            "200",
			Status:          http.StatusOK,
			CardNo:          cmd.CardNo,
			ReportID:        cmd.ReportID,
			Period:          cmd.Period,
			HistoricalCount: 0,
			Narrative:       noHistoryNarrative,
			KeyChanges:      emptyKeyChanges(),
			TrendAnalysis:   noHistoryTrend,
			RiskAssessment:  noHistoryRisk,
			Recommendations: noHistoryRecommendations,
			Confidence:      "low",
			ProcessedAt:     now,
		}
	}

	currentData := make(map[string]any, len(current.Data)+1)
	for k, v := range current.Data {
		currentData[k] = v
	}
	if current.DiagnosisName != "" {
		currentData["diagnosis_name"] = current.DiagnosisName
	}

	histData := make([]map[string]any, 0, len(history))
	for _, h := range history {
		histData = append(histData, map[string]any{
			"report_id":   h.ID,
			"report_date": h.ReportDate,
			"report_data": h.Data,
		})
	}

	res, err := s.AI.Compare(ctx, aidom.CompareRequest{
		CardNo:      cmd.CardNo,
		Kind:        cmd.Type.Kind(),
		Current:     currentData,
		CurrentDate: current.ReportDate,
		History:     histData,
		Period:      string(cmd.Period),
	})
	if err != nil {
		log.Printf("comparison analysis for card %s: %v", cmd.CardNo, err)
		return s.failure(cmd, now, http.StatusInternalServerError, "comparison analysis failed")
	}

	analysis := &domain.Analysis{
		CardNo:            cmd.CardNo,
		PatientNo:         current.PatientNo,
		Type:              cmd.Type,
		CurrentReportID:   cmd.ReportID,
		CurrentReportDate: current.ReportDate,
		CurrentReportData: current.Data,
		HistoricalCount:   len(history),
		HistoricalData:    histData,
		Period:            cmd.Period,
		Narrative:         res.Narrative,
		KeyChanges:        res.KeyChanges,
		TrendAnalysis:     res.TrendAnalysis,
		RiskAssessment:    res.RiskAssessment,
		Recommendations:   res.Recommendations,
		Model:             res.Model,
		Confidence:        res.Confidence,
		TokensUsed:        res.TokensUsed,
		ProcessedAt:       now,
	}
	if err := s.Comparisons.Save(ctx, analysis); err != nil {
		log.Printf("storing comparison analysis for card %s: %v", cmd.CardNo, err)
	}

	return Outcome{
		Code:            "200",
		Status:          http.StatusOK,
		CardNo:          cmd.CardNo,
		ReportID:        cmd.ReportID,
		Period:          cmd.Period,
		HistoricalCount: len(history),
		Narrative:       res.Narrative,
		KeyChanges:      res.KeyChanges,
		TrendAnalysis:   res.TrendAnalysis,
		RiskAssessment:  res.RiskAssessment,
		Recommendations: res.Recommendations,
		Model:           res.Model,
		Confidence:      res.Confidence,
		ProcessedAt:     now,
	}
}
