package patients

import "context"

// Repository port for the ancillary per-patient record store. Read-only: rows
// are produced by the upstream registration system.
type Repository interface {
	// LatestSnapshot returns the newest row whose slot column is non-empty,
	// ordered by registration date then creation time. A patient with no
	// qualifying row yields (nil, nil).
	LatestSnapshot(ctx context.Context, cardNo string, slot Slot) (*Snapshot, error)
}
