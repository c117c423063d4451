package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables and indexes the service owns. patient_info
// is created too so a fresh install can serve lookups, though the rows come
// from the upstream registration system.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS medical_reports (
    id              BIGSERIAL PRIMARY KEY,
    card_no         VARCHAR(64)  NOT NULL,
    patient_no      VARCHAR(64),
    report_type     VARCHAR(32)  NOT NULL,
    report_date     VARCHAR(32)  NOT NULL,
    report_data     JSONB,
    dept_code       VARCHAR(64),
    dept_name       VARCHAR(255),
    diagnosis_code  VARCHAR(64),
    diagnosis_name  VARCHAR(255),
    ai_analysis     TEXT,
    processed_at    TIMESTAMPTZ  NOT NULL,
    created_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
		`CREATE INDEX IF NOT EXISTS idx_medical_reports_card_type
    ON medical_reports (card_no, report_type, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_medical_reports_card_date
    ON medical_reports (card_no, report_date DESC);`,
		`CREATE TABLE IF NOT EXISTS patient_info (
    id                      BIGSERIAL PRIMARY KEY,
    card_no                 VARCHAR(64) NOT NULL,
    patient_name            VARCHAR(255),
    reg_date                VARCHAR(32),
    lis_result_detail       TEXT,
    pathology_reports       TEXT,
    pacs_reports            TEXT,
    microbiological_reports TEXT,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		`CREATE INDEX IF NOT EXISTS idx_patient_info_card
    ON patient_info (card_no, reg_date DESC);`,
		`CREATE TABLE IF NOT EXISTS report_comparison_analysis (
    id                        BIGSERIAL PRIMARY KEY,
    card_no                   VARCHAR(64) NOT NULL,
    patient_no                VARCHAR(64),
    report_type               VARCHAR(32) NOT NULL,
    current_report_id         BIGINT      NOT NULL,
    current_report_date       VARCHAR(32),
    current_report_data       JSONB,
    historical_reports_count  INT         NOT NULL DEFAULT 0,
    historical_reports_data   JSONB,
    comparison_period         VARCHAR(16),
    comparison_analysis       TEXT,
    key_changes               JSONB,
    trend_analysis            TEXT,
    risk_assessment           TEXT,
    recommendations           TEXT,
    analysis_model            VARCHAR(64),
    analysis_confidence       VARCHAR(16),
    analysis_tokens_used      INT,
    processed_at              TIMESTAMPTZ NOT NULL,
    created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at                TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_card
    ON report_comparison_analysis (card_no, report_type, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
