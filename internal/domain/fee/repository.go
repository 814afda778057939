package fee

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists fee audit records
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx appends a fee record within the caller's transaction so the
// record commits or rolls back together with the event that earned it.
func (r *Repository) InsertTx(ctx context.Context, tx *sqlx.Tx, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = "collected"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fee_records (id, fee_type, username, email, amount, original_amount, reference_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.FeeType, rec.Username, rec.Email, rec.Amount, rec.OriginalAmount, rec.ReferenceID, rec.Status)
	return err
}

// List returns fee records newest first, optionally filtered by type
func (r *Repository) List(ctx context.Context, feeType *RecordType, limit, offset int) ([]Record, error) {
	var recs []Record
	if feeType != nil {
		err := r.db.SelectContext(ctx, &recs, `
			SELECT * FROM fee_records WHERE fee_type = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, *feeType, limit, offset)
		return recs, err
	}
	err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM fee_records ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return recs, err
}

// CountByReference reports how many fee records reference a transaction.
// Used by tests and reconciliation to assert at-most-once fee collection.
func (r *Repository) CountByReference(ctx context.Context, referenceID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM fee_records WHERE reference_id = $1`, referenceID)
	return count, err
}
