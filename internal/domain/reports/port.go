package reports

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	// Save inserts the report inside a single unit of work and fills in the
	// store-assigned ID and timestamps.
	Save(ctx context.Context, r *Report) error
	Get(ctx context.Context, t ReportType, id ReportID) (*Report, error)

	// HistoryByType returns prior reports of the same category for the
	// patient, newest first, bounded by the window cutoff, excluding one id.
	HistoryByType(ctx context.Context, cardNo string, t ReportType, cutoff time.Time, excludeID ReportID) ([]*Report, error)

	// Summaries pages through all of a patient's reports, newest first,
	// returning the page plus the total row count.
	Summaries(ctx context.Context, cardNo string, limit, offset int) ([]Summary, int64, error)
}

// ArchiveStore port (interface untuk penyimpanan raw submission payloads)
type ArchiveStore interface {
	Archive(ctx context.Context, key string, payload []byte) (string, error)
}
