package wallet

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the closed set of balance-affecting event kinds.
// Every switch over it must be exhaustive; Valid() is the gatekeeper for
// values crossing the API boundary.
type TransactionType string

const (
	TypeDeposit         TransactionType = "deposit"
	TypeWithdrawal      TransactionType = "withdrawal"
	TypePurchase        TransactionType = "purchase"
	TypeRefund          TransactionType = "refund"
	TypeRejectionRefund TransactionType = "rejection_refund"
	TypeAdminCredit     TransactionType = "admin_credit"
	TypeAdminDebit      TransactionType = "admin_debit"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypePurchase, TypeRefund,
		TypeRejectionRefund, TypeAdminCredit, TypeAdminDebit:
		return true
	}
	return false
}

// Wallet holds one user's balance in integer minor units.
// Created lazily on first mutation, mutated only through the repository.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LedgerTransaction is an immutable, append-only ledger row.
// Amount is signed: credits positive, debits negative, so the sum of a
// user's rows always equals the wallet balance.
type LedgerTransaction struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	DisplayID      string          `db:"display_id" json:"display_id"`
	UserID         uuid.UUID       `db:"user_id" json:"user_id"`
	Type           TransactionType `db:"type" json:"type"`
	Amount         int64           `db:"amount" json:"amount"`
	Description    string          `db:"description" json:"description"`
	RelatedOrderID uuid.NullUUID   `db:"related_order_id" json:"related_order_id,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
