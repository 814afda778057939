package referral

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository owns referral_commissions rows
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// Create inserts a pending commission at referred-user registration
func (r *Repository) Create(ctx context.Context, c *Commission) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO referral_commissions (id, referrer_id, referred_user_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.ReferrerID, c.ReferredUserID, c.Amount, StatusPending)
	return err
}

// LockPendingByReferredTx locks the referred user's pending commission if
// one exists. Returns nil without error when there is nothing to pay.
func (r *Repository) LockPendingByReferredTx(ctx context.Context, tx *sqlx.Tx, referredUserID uuid.UUID) (*Commission, error) {
	var c Commission
	err := tx.GetContext(ctx, &c, `
		SELECT * FROM referral_commissions
		WHERE referred_user_id = $1 AND status = $2
		FOR UPDATE
	`, referredUserID, StatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkPaidTx flips the commission to paid and stamps the triggering order.
// The status guard makes the transition effective at most once.
func (r *Repository) MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, orderID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE referral_commissions
		SET status = $1, order_id = $2, paid_at = now()
		WHERE id = $3 AND status = $4
	`, StatusPaid, orderID, id, StatusPending)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

// GetByReferred returns the referred user's commission regardless of state
func (r *Repository) GetByReferred(ctx context.Context, referredUserID uuid.UUID) (*Commission, error) {
	var c Commission
	err := r.db.GetContext(ctx, &c, `
		SELECT * FROM referral_commissions WHERE referred_user_id = $1
	`, referredUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
