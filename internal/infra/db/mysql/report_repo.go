package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/medreport-ai/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts the report in a single transaction and fills the assigned id
// and timestamps back into rep.
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO medical_reports
(card_no, patient_no, report_type, report_date, report_data,
 dept_code, dept_name, diagnosis_code, diagnosis_name,
 ai_analysis, processed_at, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?);`

	data, err := jsonOrNull(rep.Data)
	if err != nil {
		return fmt.Errorf("encoding report data: %w", err)
	}

	now := time.Now()
	if rep.ProcessedAt.IsZero() {
		rep.ProcessedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, q,
		stringOrDash(rep.CardNo), rep.PatientNo, string(rep.Type), rep.ReportDate, data,
		rep.DeptCode, rep.DeptName, rep.DiagnosisCode, rep.DiagnosisName,
		rep.Narrative, rep.ProcessedAt, now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	rep.ID = domain.ReportID(id)
	rep.CreatedAt = now
	rep.UpdatedAt = now
	return nil
}

// Get by type + id
func (r *ReportRepository) Get(ctx context.Context, t domain.ReportType, id domain.ReportID) (*domain.Report, error) {
	const q = `
SELECT id, card_no, patient_no, report_type, report_date, report_data,
       dept_code, dept_name, diagnosis_code, diagnosis_name,
       ai_analysis, processed_at, created_at, updated_at
FROM medical_reports
WHERE report_type=? AND id=? LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, string(t), id)
	rep, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// HistoryByType returns prior same-category reports for the patient, newest
// first, created on or after cutoff, excluding one id.
func (r *ReportRepository) HistoryByType(ctx context.Context, cardNo string, t domain.ReportType, cutoff time.Time, excludeID domain.ReportID) ([]*domain.Report, error) {
	const q = `
SELECT id, card_no, patient_no, report_type, report_date, report_data,
       dept_code, dept_name, diagnosis_code, diagnosis_name,
       ai_analysis, processed_at, created_at, updated_at
FROM medical_reports
WHERE card_no=? AND report_type=? AND created_at >= ? AND id <> ?
ORDER BY report_date DESC, created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, cardNo, string(t), cutoff, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Summaries pages through all the patient's reports, newest first.
func (r *ReportRepository) Summaries(ctx context.Context, cardNo string, limit, offset int) ([]domain.Summary, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
SELECT id, report_date, report_type, LEFT(COALESCE(ai_analysis, ''), 100), created_at
FROM medical_reports
WHERE card_no=?
ORDER BY report_date DESC, created_at DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, cardNo, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying report summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ReportID, &s.ReportDate, &s.Type, &s.KeyFindings, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning summary row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	const cq = `SELECT COUNT(*) FROM medical_reports WHERE card_no=?;`
	if err := r.db.QueryRowContext(ctx, cq, cardNo).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reports: %w", err)
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rep domain.Report
	var raw []byte
	var patientNo, deptCode, deptName, diagCode, diagName, narrative sql.NullString
	if err := row.Scan(
		&rep.ID, &rep.CardNo, &patientNo, &rep.Type, &rep.ReportDate, &raw,
		&deptCode, &deptName, &diagCode, &diagName,
		&narrative, &rep.ProcessedAt, &rep.CreatedAt, &rep.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rep.PatientNo = patientNo.String
	rep.DeptCode = deptCode.String
	rep.DeptName = deptName.String
	rep.DiagnosisCode = diagCode.String
	rep.DiagnosisName = diagName.String
	rep.Narrative = narrative.String
	rep.Data = unmarshalMap(raw)
	return &rep, nil
}
