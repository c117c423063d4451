package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the service owns. Indexes ride inside the
// CREATE TABLE statements because MySQL has no CREATE INDEX IF NOT EXISTS.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS medical_reports (
    id              BIGINT AUTO_INCREMENT PRIMARY KEY,
    card_no         VARCHAR(64)  NOT NULL,
    patient_no      VARCHAR(64),
    report_type     VARCHAR(32)  NOT NULL,
    report_date     VARCHAR(32)  NOT NULL,
    report_data     JSON,
    dept_code       VARCHAR(64),
    dept_name       VARCHAR(255),
    diagnosis_code  VARCHAR(64),
    diagnosis_name  VARCHAR(255),
    ai_analysis     TEXT,
    processed_at    DATETIME NOT NULL,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_medical_reports_card_type (card_no, report_type, created_at),
    INDEX idx_medical_reports_card_date (card_no, report_date)
);`,
		`CREATE TABLE IF NOT EXISTS patient_info (
    id                      BIGINT AUTO_INCREMENT PRIMARY KEY,
    card_no                 VARCHAR(64) NOT NULL,
    patient_name            VARCHAR(255),
    reg_date                VARCHAR(32),
    lis_result_detail       TEXT,
    pathology_reports       TEXT,
    pacs_reports            TEXT,
    microbiological_reports TEXT,
    created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_patient_info_card (card_no, reg_date)
);`,
		`CREATE TABLE IF NOT EXISTS report_comparison_analysis (
    id                        BIGINT AUTO_INCREMENT PRIMARY KEY,
    card_no                   VARCHAR(64) NOT NULL,
    patient_no                VARCHAR(64),
    report_type               VARCHAR(32) NOT NULL,
    current_report_id         BIGINT      NOT NULL,
    current_report_date       VARCHAR(32),
    current_report_data       JSON,
    historical_reports_count  INT         NOT NULL DEFAULT 0,
    historical_reports_data   JSON,
    comparison_period         VARCHAR(16),
    comparison_analysis       TEXT,
    key_changes               JSON,
    trend_analysis            TEXT,
    risk_assessment           TEXT,
    recommendations           TEXT,
    analysis_model            VARCHAR(64),
    analysis_confidence       VARCHAR(16),
    analysis_tokens_used      INT,
    processed_at              DATETIME NOT NULL,
    created_at                DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at                DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_comparison_card (card_no, report_type, created_at)
);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
