package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/medreport-ai/internal/domain/patients"
)

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// slotColumns whitelists the free-text columns a snapshot lookup may target.
// The slot value is interpolated into SQL, so anything outside this set is
// rejected outright.
var slotColumns = map[domain.Slot]struct{}{
	domain.SlotLabDetail:    {},
	domain.SlotPathology:    {},
	domain.SlotImaging:      {},
	domain.SlotMicrobiology: {},
}

// LatestSnapshot returns the newest non-empty row for the slot, or (nil, nil)
// when the patient has none.
func (r *PatientRepository) LatestSnapshot(ctx context.Context, cardNo string, slot domain.Slot) (*domain.Snapshot, error) {
	if _, ok := slotColumns[slot]; !ok {
		return nil, fmt.Errorf("unknown snapshot slot %q", slot)
	}

	q := fmt.Sprintf(`
SELECT id, card_no, patient_name, reg_date, %s, created_at, updated_at
FROM patient_info
WHERE card_no=? AND %s IS NOT NULL AND %s <> ''
ORDER BY reg_date DESC, created_at DESC
LIMIT 1;`, slot, slot, slot)

	row := r.db.QueryRowContext(ctx, q, cardNo)

	var s domain.Snapshot
	var name, regDate sql.NullString
	if err := row.Scan(&s.ID, &s.CardNo, &name, &regDate, &s.Content, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.PatientName = name.String
	s.RegDate = regDate.String
	s.Slot = slot
	return &s, nil
}
