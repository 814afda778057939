package referral

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
)

// LedgerStore credits the referrer inside the payout transaction
type LedgerStore interface {
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType wallet.TransactionType, description string, relatedOrderID uuid.NullUUID) (*wallet.LedgerTransaction, error)
}

// CompletedOrderCounter reports how many orders a buyer has ever completed.
// Computed from the orders table at decision time rather than stored, so
// the first-order guard cannot drift.
type CompletedOrderCounter interface {
	CountCompletedByBuyerTx(ctx context.Context, tx *sqlx.Tx, buyerID uuid.UUID) (int, error)
}

// SettingsProvider supplies the commission amount for new registrations
type SettingsProvider interface {
	Get(ctx context.Context) (*settings.PlatformSettings, error)
}

// Notifier tells the referrer about the payout
type Notifier interface {
	NotifyReferralPaid(ctx context.Context, referrerID uuid.UUID, amount int64, orderID uuid.UUID)
}

// Service pays referral commissions at most once per referred user, ever.
type Service struct {
	repo     *Repository
	ledger   LedgerStore
	orders   CompletedOrderCounter
	settings SettingsProvider
	notifier Notifier // nil disables notifications
}

func NewService(repo *Repository, ledger LedgerStore, orders CompletedOrderCounter, settingsProvider SettingsProvider, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		orders:   orders,
		settings: settingsProvider,
		notifier: notifier,
	}
}

// RegisterReferral records a pending commission when a referred user signs
// up. The amount is snapshotted from settings at registration time.
func (s *Service) RegisterReferral(ctx context.Context, referrerID, referredUserID uuid.UUID) error {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if cfg.ReferralCommissionAmount <= 0 {
		return nil
	}

	c := &Commission{
		ID:             uuid.New(),
		ReferrerID:     referrerID,
		ReferredUserID: referredUserID,
		Amount:         cfg.ReferralCommissionAmount,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	log.Info().
		Str("referrer_id", referrerID.String()).
		Str("referred_user_id", referredUserID.String()).
		Int64("amount", c.Amount).
		Msg("referral commission registered")
	return nil
}

// PayFirstOrder pays the referrer once the referred user completes their
// first order. The pending-row lock plus the completed-order count inside
// one transaction make the payout at most once ever: no pending row or a
// count other than one means a silent no-op.
func (s *Service) PayFirstOrder(ctx context.Context, referredUserID, orderID uuid.UUID) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c, err := s.repo.LockPendingByReferredTx(ctx, tx, referredUserID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	completed, err := s.orders.CountCompletedByBuyerTx(ctx, tx, referredUserID)
	if err != nil {
		return err
	}
	if completed != 1 {
		// Not the first completed order; the bounty stays unpaid forever
		return nil
	}

	if err := s.repo.MarkPaidTx(ctx, tx, c.ID, orderID); err != nil {
		return err
	}

	desc := "Referral commission for first order of referred user"
	if _, err := s.ledger.CreditTx(ctx, tx, c.ReferrerID, c.Amount, wallet.TypeDeposit, desc, uuid.NullUUID{UUID: orderID, Valid: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info().
		Str("referrer_id", c.ReferrerID.String()).
		Str("referred_user_id", referredUserID.String()).
		Str("order_id", orderID.String()).
		Int64("amount", c.Amount).
		Msg("referral commission paid")

	if s.notifier != nil {
		s.notifier.NotifyReferralPaid(ctx, c.ReferrerID, c.Amount, orderID)
	}
	return nil
}
