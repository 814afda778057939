package fee

import (
	"errors"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
)

// Kind distinguishes which gateway limits apply to an amount
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

var (
	ErrBelowMinimum = errors.New("amount below gateway minimum")
	ErrAboveMaximum = errors.New("amount above gateway maximum")
	ErrUnknownKind  = errors.New("unknown fee kind")
)

// Compute returns the platform fee for an amount. Pure function of the
// settings snapshot: percentage mode treats PlatformFeeValue as basis
// points, flat mode as minor units.
func Compute(amount int64, s *settings.PlatformSettings) int64 {
	if amount <= 0 {
		return 0
	}
	switch s.PlatformFeeType {
	case settings.FeeTypePercentage:
		return amount * s.PlatformFeeValue / 10000
	case settings.FeeTypeFlat:
		return s.PlatformFeeValue
	}
	return 0
}

// ValidateAmount checks an amount against the gateway limits for its kind.
// Runs before anything enters the lifecycle engine; a zero max means no cap.
func ValidateAmount(amount int64, kind Kind, s *settings.PlatformSettings) error {
	var min, max int64
	switch kind {
	case KindDeposit:
		min, max = s.MinDepositAmount, s.MaxDepositAmount
	case KindWithdrawal:
		min, max = s.MinWithdrawalAmount, s.MaxWithdrawalAmount
	default:
		return ErrUnknownKind
	}

	if amount < min {
		return ErrBelowMinimum
	}
	if max > 0 && amount > max {
		return ErrAboveMaximum
	}
	return nil
}
