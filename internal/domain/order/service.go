package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/fee"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/user"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
)

// LedgerStore moves money inside the settlement transaction
type LedgerStore interface {
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType wallet.TransactionType, description string, relatedOrderID uuid.NullUUID) (*wallet.LedgerTransaction, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType wallet.TransactionType, description string, relatedOrderID uuid.NullUUID) (*wallet.LedgerTransaction, error)
}

// SettingsProvider supplies the fee policy snapshot at order creation
type SettingsProvider interface {
	Get(ctx context.Context) (*settings.PlatformSettings, error)
}

// FeeRecorder writes the platform's cut inside the settlement transaction
type FeeRecorder interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, rec *fee.Record) error
}

// UserDirectory resolves the seller for the fee record
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// StatsRecorder bumps the site-wide completed purchase counter
type StatsRecorder interface {
	IncrementCompletedPurchasesTx(ctx context.Context, tx *sqlx.Tx) error
}

// ReferralPayer runs the first-order commission payout. It commits its own
// transaction; a failure here is logged and never unwinds the settlement.
type ReferralPayer interface {
	PayFirstOrder(ctx context.Context, referredUserID, orderID uuid.UUID) error
}

// Notifier announces settlement outcomes, best effort
type Notifier interface {
	NotifyOrderCompleted(ctx context.Context, sellerID uuid.UUID, amount int64, orderID uuid.UUID)
	NotifyOrderCancelled(ctx context.Context, buyerID uuid.UUID, amount int64, orderID uuid.UUID)
}

// Service runs the order lifecycle. The buyer's full price sits escrowed on
// the platform from creation until the order completes (seller paid, fee
// collected) or terminates (buyer refunded in full).
type Service struct {
	repo     *Repository
	ledger   LedgerStore
	fees     FeeRecorder
	settings SettingsProvider
	users    UserDirectory
	stats    StatsRecorder
	referral ReferralPayer // nil disables commission payouts
	notifier Notifier      // nil disables notifications
}

func NewService(repo *Repository, ledger LedgerStore, fees FeeRecorder, settingsProvider SettingsProvider, users UserDirectory, stats StatsRecorder, referral ReferralPayer, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		fees:     fees,
		settings: settingsProvider,
		users:    users,
		stats:    stats,
		referral: referral,
		notifier: notifier,
	}
}

type CreateParams struct {
	BuyerID      uuid.UUID
	SellerID     uuid.UUID
	ListingID    uuid.UUID
	Price        int64
	Requirements string
}

// Create escrows the buyer's full price and opens the order in one
// transaction. ServiceFee and SellerAmount are fixed here from the current
// fee policy. Insufficient funds fail the whole creation.
// maxOrderPrice caps client-supplied prices; listings live outside this
// system, so the price arrives on the wire and needs a sanity bound.
const maxOrderPrice = 100_000_000

func (s *Service) Create(ctx context.Context, p CreateParams) (*Order, error) {
	if p.Price <= 0 || p.Price > maxOrderPrice {
		return nil, ErrInvalidPrice
	}
	if p.BuyerID == p.SellerID {
		return nil, ErrSelfPurchase
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	serviceFee := fee.Compute(p.Price, cfg)
	if serviceFee >= p.Price {
		return nil, ErrInvalidPrice
	}

	o := &Order{
		ID:           uuid.New(),
		BuyerID:      p.BuyerID,
		SellerID:     p.SellerID,
		ListingID:    p.ListingID,
		Requirements: p.Requirements,
		Price:        p.Price,
		ServiceFee:   serviceFee,
		SellerAmount: p.Price - serviceFee,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.InsertTx(ctx, tx, o); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Purchase escrow for order %s", o.DisplayID)
	related := uuid.NullUUID{UUID: o.ID, Valid: true}
	if _, err := s.ledger.DebitTx(ctx, tx, p.BuyerID, p.Price, wallet.TypePurchase, desc, related); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", o.ID.String()).
		Str("display_id", o.DisplayID).
		Str("buyer_id", p.BuyerID.String()).
		Int64("price", p.Price).
		Int64("service_fee", serviceFee).
		Msg("order created, price escrowed")
	return o, nil
}

// Accept moves pending to accepted. Seller only, no funds move.
func (s *Service) Accept(ctx context.Context, orderID, sellerID uuid.UUID) (*Order, error) {
	return s.transition(ctx, orderID, sellerID, roleSeller, StatusPending, StatusAccepted)
}

// Deliver moves accepted to delivered. Seller only, no funds move.
func (s *Service) Deliver(ctx context.Context, orderID, sellerID uuid.UUID) (*Order, error) {
	return s.transition(ctx, orderID, sellerID, roleSeller, StatusAccepted, StatusDelivered)
}

type party int

const (
	roleBuyer party = iota
	roleSeller
	roleStaff
)

func (s *Service) transition(ctx context.Context, orderID, actorID uuid.UUID, who party, from, to Status) (*Order, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := s.repo.LockByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkParty(o, actorID, who); err != nil {
		return nil, err
	}
	if o.Status != from {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.TransitionTx(ctx, tx, orderID, from, to); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	o.Status = to
	return o, nil
}

func checkParty(o *Order, actorID uuid.UUID, who party) error {
	switch who {
	case roleBuyer:
		if o.BuyerID != actorID {
			return ErrNotYourOrder
		}
	case roleSeller:
		if o.SellerID != actorID {
			return ErrNotYourOrder
		}
	}
	return nil
}

// ConfirmCompletion is the buyer accepting the delivered work. In one
// transaction: delivered moves to completed, the seller is credited
// SellerAmount, the platform's cut becomes a seller_domain_fee record and
// the site counter ticks. The referral payout runs after commit in its own
// transaction; the settlement is authoritative and a payout failure is
// logged, never rolled back.
func (s *Service) ConfirmCompletion(ctx context.Context, orderID, buyerID uuid.UUID) (*Order, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := s.repo.LockByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, ErrNotYourOrder
	}
	if o.Status != StatusDelivered {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.TransitionTx(ctx, tx, orderID, StatusDelivered, StatusCompleted); err != nil {
		return nil, err
	}

	related := uuid.NullUUID{UUID: o.ID, Valid: true}
	desc := fmt.Sprintf("Payout for order %s", o.DisplayID)
	if _, err := s.ledger.CreditTx(ctx, tx, o.SellerID, o.SellerAmount, wallet.TypeDeposit, desc, related); err != nil {
		return nil, err
	}

	if o.ServiceFee > 0 {
		seller, err := s.users.GetByID(ctx, o.SellerID)
		if err != nil {
			return nil, err
		}
		rec := &fee.Record{
			ID:             uuid.New(),
			FeeType:        fee.RecordTypeSellerDomainFee,
			Username:       seller.Username,
			Email:          seller.Email,
			Amount:         o.ServiceFee,
			OriginalAmount: o.Price,
			ReferenceID:    o.DisplayID,
		}
		if err := s.fees.InsertTx(ctx, tx, rec); err != nil {
			return nil, err
		}
	}

	if err := s.stats.IncrementCompletedPurchasesTx(ctx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", o.ID.String()).
		Str("seller_id", o.SellerID.String()).
		Int64("seller_amount", o.SellerAmount).
		Int64("service_fee", o.ServiceFee).
		Msg("order completed, seller paid")

	if s.referral != nil {
		if err := s.referral.PayFirstOrder(ctx, o.BuyerID, o.ID); err != nil {
			log.Error().Err(err).
				Str("order_id", o.ID.String()).
				Str("buyer_id", o.BuyerID.String()).
				Msg("referral payout failed after settlement")
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyOrderCompleted(ctx, o.SellerID, o.SellerAmount, o.ID)
	}

	o.Status = StatusCompleted
	return o, nil
}

// Cancel is the buyer backing out of a pending order, full refund.
func (s *Service) Cancel(ctx context.Context, orderID, buyerID uuid.UUID) (*Order, error) {
	return s.terminateWithRefund(ctx, orderID, buyerID, roleBuyer, []Status{StatusPending}, StatusCancelled)
}

// Decline is the seller turning down a pending order, full refund.
func (s *Service) Decline(ctx context.Context, orderID, sellerID uuid.UUID) (*Order, error) {
	return s.terminateWithRefund(ctx, orderID, sellerID, roleSeller, []Status{StatusPending}, StatusDeclined)
}

// Refund is staff unwinding any order that has not completed, full refund.
func (s *Service) Refund(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.terminateWithRefund(ctx, orderID, uuid.Nil, roleStaff,
		[]Status{StatusPending, StatusAccepted, StatusDelivered}, StatusRefunded)
}

// terminateWithRefund ends the order and returns the full escrowed price to
// the buyer in one transaction. Fee never left the buyer's price here, so
// the refund is exactly what was debited at creation.
func (s *Service) terminateWithRefund(ctx context.Context, orderID, actorID uuid.UUID, who party, allowed []Status, to Status) (*Order, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := s.repo.LockByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkParty(o, actorID, who); err != nil {
		return nil, err
	}

	ok := false
	for _, st := range allowed {
		if o.Status == st {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.TransitionTx(ctx, tx, orderID, o.Status, to); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Refund for order %s", o.DisplayID)
	related := uuid.NullUUID{UUID: o.ID, Valid: true}
	if _, err := s.ledger.CreditTx(ctx, tx, o.BuyerID, o.Price, wallet.TypeRefund, desc, related); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", o.ID.String()).
		Str("status", string(to)).
		Int64("refunded", o.Price).
		Msg("order terminated, buyer refunded")

	if s.notifier != nil {
		s.notifier.NotifyOrderCancelled(ctx, o.BuyerID, o.Price, o.ID)
	}

	o.Status = to
	return o, nil
}

// DeleteWithRefund removes an order outright (admin). Completed orders are
// refused because the seller has already been paid. Orders still holding
// escrow refund the buyer in the same transaction as the delete; orders
// already terminated were refunded when they terminated.
func (s *Service) DeleteWithRefund(ctx context.Context, orderID uuid.UUID) (int64, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	o, err := s.repo.LockByIDTx(ctx, tx, orderID)
	if err != nil {
		return 0, err
	}
	if o.Status == StatusCompleted {
		return 0, ErrOrderCompleted
	}

	var refunded int64
	if o.EscrowHeld() {
		desc := fmt.Sprintf("Refund for deleted order %s", o.DisplayID)
		related := uuid.NullUUID{UUID: o.ID, Valid: true}
		if _, err := s.ledger.CreditTx(ctx, tx, o.BuyerID, o.Price, wallet.TypeRefund, desc, related); err != nil {
			return 0, err
		}
		refunded = o.Price
	}

	if err := s.repo.DeleteTx(ctx, tx, orderID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.Info().
		Str("order_id", o.ID.String()).
		Str("status", string(o.Status)).
		Int64("refunded", refunded).
		Msg("order deleted by admin")

	if refunded > 0 && s.notifier != nil {
		s.notifier.NotifyOrderCancelled(ctx, o.BuyerID, refunded, o.ID)
	}
	return refunded, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID, normalizeLimit(limit), offset)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]Order, error) {
	return s.repo.ListBySeller(ctx, sellerID, normalizeLimit(limit), offset)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
