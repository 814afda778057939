package transaction

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
)

const transactionIDRetries = 3

// Repository owns wallet_transaction_requests rows. Finalization reads,
// checks and writes the status inside one transaction with the row locked,
// which is what makes approve/reject at-most-once under concurrent admins.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// BeginTx starts the transaction the lifecycle engine finalizes within
func (r *Repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// InsertTx creates the request row within the caller's transaction,
// regenerating the display transaction ID on a unique conflict.
func (r *Repository) InsertTx(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	prefix := "TX"
	if req.Type == RequestTypeWithdrawal {
		prefix = "WD"
	}

	for attempt := 0; attempt < transactionIDRetries; attempt++ {
		req.TransactionID = wallet.NewDisplayID(prefix)

		err := tx.GetContext(ctx, req, `
			INSERT INTO wallet_transaction_requests
				(id, transaction_id, user_id, type, amount, fee, status, payment_method, withdrawal_method, user_tx_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING *
		`, req.ID, req.TransactionID, req.UserID, req.Type, req.Amount, req.Fee,
			StatusProcessing, req.PaymentMethod, req.WithdrawalMethod, req.UserTxID)
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

// GetByID fetches a request without locking it
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.GetContext(ctx, &req, `SELECT * FROM wallet_transaction_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// LockByIDTx fetches a request with a row lock held until the caller's
// transaction ends. Concurrent finalizers serialize here.
func (r *Repository) LockByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Request, error) {
	var req Request
	err := tx.GetContext(ctx, &req, `SELECT * FROM wallet_transaction_requests WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FinalizeTx writes the terminal status and actor stamps within the
// caller's transaction. Guarded by status = processing as a second line of
// defense behind the row lock.
func (r *Repository) FinalizeTx(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE wallet_transaction_requests
		SET status = $1,
		    admin_note = $2,
		    rejection_reason = $3,
		    processed_by = $4,
		    approved_by = $5,
		    rejected_by = $6,
		    processed_at = now()
		WHERE id = $7 AND status = $8
	`, req.Status, req.AdminNote, req.RejectionReason,
		req.ProcessedBy, req.ApprovedBy, req.RejectedBy,
		req.ID, StatusProcessing)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// ListByUser returns a user's requests, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Request, error) {
	var reqs []Request
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM wallet_transaction_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return reqs, err
}

// ListByStatus returns requests in a given state for the admin queue
func (r *Repository) ListByStatus(ctx context.Context, status RequestStatus, limit, offset int) ([]Request, error) {
	var reqs []Request
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM wallet_transaction_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return reqs, err
}
