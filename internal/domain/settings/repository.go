package settings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository loads and updates the platform settings row
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the platform settings. ErrNotConfigured if the row is absent.
func (r *Repository) Get(ctx context.Context) (*PlatformSettings, error) {
	var s PlatformSettings
	err := r.db.GetContext(ctx, &s, `SELECT * FROM platform_settings ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetLoginProtection flips the global lockout toggle
func (r *Repository) SetLoginProtection(ctx context.Context, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE platform_settings SET login_protection_enabled = $1, updated_at = now()
	`, enabled)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotConfigured
	}
	return nil
}

// Update replaces the mutable fee and gateway-limit fields
func (r *Repository) Update(ctx context.Context, s *PlatformSettings) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE platform_settings
		SET platform_fee_type = $1,
		    platform_fee_value = $2,
		    min_deposit_amount = $3,
		    max_deposit_amount = $4,
		    min_withdrawal_amount = $5,
		    max_withdrawal_amount = $6,
		    referral_commission_amount = $7,
		    updated_at = now()
		WHERE id = $8
	`, s.PlatformFeeType, s.PlatformFeeValue,
		s.MinDepositAmount, s.MaxDepositAmount,
		s.MinWithdrawalAmount, s.MaxWithdrawalAmount,
		s.ReferralCommissionAmount, s.ID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotConfigured
	}
	return nil
}
