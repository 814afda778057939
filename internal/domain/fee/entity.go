package fee

import (
	"time"

	"github.com/google/uuid"
)

// RecordType is the closed set of fee-bearing events
type RecordType string

const (
	RecordTypeTopUp           RecordType = "top_up"
	RecordTypeWithdrawal      RecordType = "withdrawal"
	RecordTypeSellerDomainFee RecordType = "seller_domain_fee"
)

// Record is an immutable audit row written only when a fee-bearing event
// actually succeeds (request approved, order completed).
type Record struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	FeeType        RecordType `db:"fee_type" json:"fee_type"`
	Username       string     `db:"username" json:"username"`
	Email          string     `db:"email" json:"email"`
	Amount         int64      `db:"amount" json:"amount"`
	OriginalAmount int64      `db:"original_amount" json:"original_amount"`
	ReferenceID    string     `db:"reference_id" json:"reference_id"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
