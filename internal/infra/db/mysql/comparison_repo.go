package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/medreport-ai/internal/domain/comparison"
)

type ComparisonRepository struct {
	db *sql.DB
}

func NewComparisonRepository(db *sql.DB) *ComparisonRepository {
	return &ComparisonRepository{db: db}
}

// Save inserts one comparison outcome and fills the assigned id back into a.
func (r *ComparisonRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO report_comparison_analysis
(card_no, patient_no, report_type,
 current_report_id, current_report_date, current_report_data,
 historical_reports_count, historical_reports_data, comparison_period,
 comparison_analysis, key_changes, trend_analysis, risk_assessment, recommendations,
 analysis_model, analysis_confidence, analysis_tokens_used,
 processed_at, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`

	current, err := jsonOrNull(a.CurrentReportData)
	if err != nil {
		return fmt.Errorf("encoding current report data: %w", err)
	}
	historical, err := jsonOrNull(a.HistoricalData)
	if err != nil {
		return fmt.Errorf("encoding historical report data: %w", err)
	}
	changes, err := jsonOrNull(a.KeyChanges)
	if err != nil {
		return fmt.Errorf("encoding key changes: %w", err)
	}

	now := time.Now()
	if a.ProcessedAt.IsZero() {
		a.ProcessedAt = now
	}

	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(a.CardNo), a.PatientNo, string(a.Type),
		a.CurrentReportID, a.CurrentReportDate, current,
		a.HistoricalCount, historical, string(a.Period),
		a.Narrative, changes, a.TrendAnalysis, a.RiskAssessment, a.Recommendations,
		a.Model, a.Confidence, a.TokensUsed,
		a.ProcessedAt, now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting comparison analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	a.ID = domain.AnalysisID(id)
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}
