package wallet

import (
	"crypto/rand"
)

const displayIDSuffixLength = 6

// DisplayIDPrefix maps a transaction type to its human-facing ID prefix.
// Withdrawals read WD-, seller platform fees SF-, everything else TX-.
func DisplayIDPrefix(t TransactionType) string {
	switch t {
	case TypeWithdrawal:
		return "WD"
	case TypePurchase:
		return "SF"
	case TypeDeposit, TypeRefund, TypeRejectionRefund, TypeAdminCredit, TypeAdminDebit:
		return "TX"
	}
	return "TX"
}

// NewDisplayID generates prefix + "-" + random alphanumeric suffix.
// Uniqueness is enforced by the database constraint; callers retry on
// conflict rather than pre-checking.
func NewDisplayID(prefix string) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, displayIDSuffixLength)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return prefix + "-" + string(b)
}
