package transaction

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RequestType distinguishes top-ups from withdrawals
type RequestType string

const (
	RequestTypeTopUp      RequestType = "top_up"
	RequestTypeWithdrawal RequestType = "withdrawal"
)

// Valid reports whether t is a known request type
func (t RequestType) Valid() bool {
	return t == RequestTypeTopUp || t == RequestTypeWithdrawal
}

// RequestStatus is the request lifecycle state. Transitions are
// processing -> approved or processing -> failed, nothing else; both
// targets are terminal.
type RequestStatus string

const (
	StatusProcessing RequestStatus = "processing"
	StatusApproved   RequestStatus = "approved"
	StatusFailed     RequestStatus = "failed"
)

// Decision is the admin verdict on a processing request
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionFailed   Decision = "failed"
)

// Request is a pending top-up or withdrawal awaiting admin action.
// For withdrawals, Amount+Fee is already escrowed out of the visible
// balance from the moment the row exists.
type Request struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	TransactionID    string         `db:"transaction_id" json:"transaction_id"`
	UserID           uuid.UUID      `db:"user_id" json:"user_id"`
	Type             RequestType    `db:"type" json:"type"`
	Amount           int64          `db:"amount" json:"amount"`
	Fee              int64          `db:"fee" json:"fee"`
	Status           RequestStatus  `db:"status" json:"status"`
	PaymentMethod    sql.NullString `db:"payment_method" json:"payment_method,omitempty"`
	WithdrawalMethod sql.NullString `db:"withdrawal_method" json:"withdrawal_method,omitempty"`
	UserTxID         sql.NullString `db:"user_tx_id" json:"user_tx_id,omitempty"`
	AdminNote        sql.NullString `db:"admin_note" json:"admin_note,omitempty"`
	RejectionReason  sql.NullString `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ProcessedBy      uuid.NullUUID  `db:"processed_by" json:"processed_by,omitempty"`
	ApprovedBy       uuid.NullUUID  `db:"approved_by" json:"approved_by,omitempty"`
	RejectedBy       uuid.NullUUID  `db:"rejected_by" json:"rejected_by,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	ProcessedAt      sql.NullTime   `db:"processed_at" json:"processed_at,omitempty"`
}

// IsTerminal reports whether the request can no longer be processed
func (r *Request) IsTerminal() bool {
	return r.Status != StatusProcessing
}

// EscrowedAmount is what left the wallet at creation time
func (r *Request) EscrowedAmount() int64 {
	if r.Type == RequestTypeWithdrawal {
		return r.Amount + r.Fee
	}
	return 0
}
