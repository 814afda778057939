package referral

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CommissionStatus is the one-way pending -> paid lifecycle
type CommissionStatus string

const (
	StatusPending CommissionStatus = "pending"
	StatusPaid    CommissionStatus = "paid"
)

// Commission is the one-time bounty owed to a referrer, created when the
// referred user registers and paid on their first completed order.
type Commission struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	ReferrerID     uuid.UUID        `db:"referrer_id" json:"referrer_id"`
	ReferredUserID uuid.UUID        `db:"referred_user_id" json:"referred_user_id"`
	OrderID        uuid.NullUUID    `db:"order_id" json:"order_id,omitempty"`
	Amount         int64            `db:"amount" json:"amount"`
	Status         CommissionStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	PaidAt         sql.NullTime     `db:"paid_at" json:"paid_at,omitempty"`
}
