package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const displayIDInsertRetries = 3

// Repository owns wallets and ledger rows. Every balance mutation and its
// ledger append happen inside one SQL transaction with the wallet row
// locked FOR UPDATE, so per-user mutations serialize and the pair commits
// or rolls back as a unit.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetBalance returns the user's balance, 0 if no wallet exists yet.
// Reading does not create the wallet.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM user_wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

// ListByUser returns the user's ledger history, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]LedgerTransaction, error) {
	var txs []LedgerTransaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM ledger_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return txs, err
}

// SumByUser returns the signed sum of all ledger rows for a user.
// Used by reconciliation checks against the wallet balance.
func (r *Repository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0) FROM ledger_transactions WHERE user_id = $1
	`, userID)
	return sum, err
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// lockWallet creates the wallet if absent and takes a row lock on it,
// returning the current balance. Callers hold the lock until commit.
func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM user_wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return balance, err
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE user_wallets SET balance = $1, updated_at = now() WHERE user_id = $2`, balance, userID)
	return err
}

// insertLedgerTx appends a ledger row, regenerating the display ID on a
// unique-constraint collision. The database constraint is the source of
// truth for uniqueness; generation is optimistic.
func (r *Repository) insertLedgerTx(ctx context.Context, tx *sqlx.Tx, rec *LedgerTransaction) error {
	for attempt := 0; attempt < displayIDInsertRetries; attempt++ {
		rec.DisplayID = NewDisplayID(DisplayIDPrefix(rec.Type))

		err := tx.GetContext(ctx, rec, `
			INSERT INTO ledger_transactions (id, display_id, user_id, type, amount, description, related_order_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		`, rec.ID, rec.DisplayID, rec.UserID, rec.Type, rec.Amount, rec.Description, rec.RelatedOrderID)
		if err == nil {
			return nil
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			continue
		}
		return err
	}
	return ErrDisplayIDExhaust
}

// applyTx moves money within the caller's transaction: lock wallet, check
// funds, write balance, append ledger row. amount is signed.
func (r *Repository) applyTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, int64, error) {
	balance, err := r.lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, 0, err
	}

	nextBalance := balance + amount
	if nextBalance < 0 {
		return nil, 0, ErrInsufficientFunds
	}

	if err := r.updateBalance(ctx, tx, userID, nextBalance); err != nil {
		return nil, 0, err
	}

	rec := &LedgerTransaction{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           txType,
		Amount:         amount,
		Description:    description,
		RelatedOrderID: relatedOrderID,
	}
	if err := r.insertLedgerTx(ctx, tx, rec); err != nil {
		return nil, 0, err
	}

	return rec, nextBalance, nil
}

func (r *Repository) apply(ctx context.Context, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, int64, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	rec, balance, err := r.applyTx(ctx, tx, userID, amount, txType, description, relatedOrderID)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return rec, balance, nil
}

// CreditTx adds funds within an external transaction. Used when the credit
// must be atomic with another operation (request finalization, settlement).
func (r *Repository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, error) {
	rec, _, err := r.applyTx(ctx, tx, userID, amount, txType, description, relatedOrderID)
	return rec, err
}

// DebitTx removes funds within an external transaction.
// Returns ErrInsufficientFunds without mutating anything when the balance
// is short; this is the single choke point preventing negative balances.
func (r *Repository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, error) {
	rec, _, err := r.applyTx(ctx, tx, userID, -amount, txType, description, relatedOrderID)
	return rec, err
}

// Credit adds funds in its own transaction
func (r *Repository) Credit(ctx context.Context, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, error) {
	rec, _, err := r.apply(ctx, userID, amount, txType, description, relatedOrderID)
	return rec, err
}

// Debit removes funds in its own transaction
func (r *Repository) Debit(ctx context.Context, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, error) {
	rec, _, err := r.apply(ctx, userID, -amount, txType, description, relatedOrderID)
	return rec, err
}

// Adjust applies an administrative signed correction and returns the new
// balance alongside the ledger row. Negative adjustments still respect the
// non-negative balance invariant.
func (r *Repository) Adjust(ctx context.Context, userID uuid.UUID, delta int64, reason string) (*LedgerTransaction, int64, error) {
	txType := TypeAdminCredit
	if delta < 0 {
		txType = TypeAdminDebit
	}
	return r.apply(ctx, userID, delta, txType, reason, uuid.NullUUID{})
}
