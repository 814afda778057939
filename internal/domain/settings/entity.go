package settings

import "time"

// FeeType selects how the platform fee is computed
type FeeType string

const (
	FeeTypePercentage FeeType = "percentage"
	FeeTypeFlat       FeeType = "flat"
)

// PlatformSettings is the single-row configuration consulted by the fee
// policy, the transaction lifecycle engine and the login lockout engine.
// All amounts are integer minor units; PlatformFeeValue is basis points
// (1/100 of a percent) when FeeType is percentage, minor units when flat.
type PlatformSettings struct {
	ID                       int       `db:"id"`
	PlatformFeeType          FeeType   `db:"platform_fee_type"`
	PlatformFeeValue         int64     `db:"platform_fee_value"`
	MinDepositAmount         int64     `db:"min_deposit_amount"`
	MaxDepositAmount         int64     `db:"max_deposit_amount"`
	MinWithdrawalAmount      int64     `db:"min_withdrawal_amount"`
	MaxWithdrawalAmount      int64     `db:"max_withdrawal_amount"`
	ReferralCommissionAmount int64     `db:"referral_commission_amount"`
	LoginProtectionEnabled   bool      `db:"login_protection_enabled"`
	UpdatedAt                time.Time `db:"updated_at"`
}
