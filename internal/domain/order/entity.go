package order

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeclined  Status = "declined"
	StatusRefunded  Status = "refunded"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusDeclined, StatusRefunded:
		return true
	}
	return false
}

// Order is a guest-post purchase. Price is what the buyer escrows at
// creation; ServiceFee and SellerAmount are snapshotted from the fee policy
// at the same moment, so later settings changes never touch an open order.
// Price = ServiceFee + SellerAmount, all in minor units.
type Order struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	DisplayID    string       `db:"display_id" json:"display_id"`
	BuyerID      uuid.UUID    `db:"buyer_id" json:"buyer_id"`
	SellerID     uuid.UUID    `db:"seller_id" json:"seller_id"`
	ListingID    uuid.UUID    `db:"listing_id" json:"listing_id"`
	Requirements string       `db:"requirements" json:"requirements"`
	Price        int64        `db:"price" json:"price"`
	ServiceFee   int64        `db:"service_fee" json:"service_fee"`
	SellerAmount int64        `db:"seller_amount" json:"seller_amount"`
	Status       Status       `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}

// EscrowHeld reports whether the buyer's money is still parked on the
// platform, i.e. no settlement or refund has happened yet.
func (o *Order) EscrowHeld() bool {
	switch o.Status {
	case StatusPending, StatusAccepted, StatusDelivered:
		return true
	}
	return false
}
