package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeTopUpApproved      Type = "top_up_approved"
	TypeTopUpRejected      Type = "top_up_rejected"
	TypeWithdrawalApproved Type = "withdrawal_approved"
	TypeWithdrawalRejected Type = "withdrawal_rejected"
	TypeOrderCompleted     Type = "order_completed"
	TypeOrderCancelled     Type = "order_cancelled"
	TypeReferralPaid       Type = "referral_paid"
	TypeBalanceAdjusted    Type = "balance_adjusted"
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Data links a notification to the ledger rows and orders it describes
type NotificationData struct {
	RequestID *uuid.UUID `json:"request_id,omitempty"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	DisplayID string     `json:"display_id,omitempty"`
	Amount    int64      `json:"amount,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}
