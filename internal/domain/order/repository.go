package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
)

const displayIDRetries = 3

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// InsertTx creates the order row within the caller's transaction,
// regenerating the display ID on a unique conflict.
func (r *Repository) InsertTx(ctx context.Context, tx *sqlx.Tx, o *Order) error {
	for attempt := 0; attempt < displayIDRetries; attempt++ {
		o.DisplayID = wallet.NewDisplayID("OR")

		err := tx.GetContext(ctx, o, `
			INSERT INTO orders
				(id, display_id, buyer_id, seller_id, listing_id, requirements, price, service_fee, seller_amount, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING *
		`, o.ID, o.DisplayID, o.BuyerID, o.SellerID, o.ListingID, o.Requirements,
			o.Price, o.ServiceFee, o.SellerAmount, StatusPending)
		if err == nil {
			return nil
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			continue
		}
		return err
	}
	return wallet.ErrDisplayIDExhaust
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// LockByIDTx fetches the order with a row lock held until the caller's
// transaction ends. Settlement, refunds and deletion all serialize here.
func (r *Repository) LockByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Order, error) {
	var o Order
	err := tx.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// TransitionTx moves the order from one status to another. The WHERE clause
// re-checks the source status, so a concurrent transition makes this a no-op
// and the caller gets ErrInvalidTransition.
func (r *Repository) TransitionTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $2 AND status = $3`

	res, err := tx.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]Order, error) {
	orders := []Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, buyerID, limit, offset)
	return orders, err
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]Order, error) {
	orders := []Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	return orders, err
}

// CountCompletedByBuyerTx counts the buyer's completed orders inside the
// caller's transaction. The referral payout keys its first-order guard on
// this count while holding the pending commission row locked.
func (r *Repository) CountCompletedByBuyerTx(ctx context.Context, tx *sqlx.Tx, buyerID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM orders WHERE buyer_id = $1 AND status = 'completed'
	`, buyerID)
	return count, err
}
