package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/fee"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/user"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
)

// LedgerStore is the slice of the wallet repository the engine moves money
// through. Both calls run inside the engine's finalization transaction.
type LedgerStore interface {
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType wallet.TransactionType, description string, relatedOrderID uuid.NullUUID) (*wallet.LedgerTransaction, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, txType wallet.TransactionType, description string, relatedOrderID uuid.NullUUID) (*wallet.LedgerTransaction, error)
}

// SettingsProvider supplies the configuration snapshot per operation
type SettingsProvider interface {
	Get(ctx context.Context) (*settings.PlatformSettings, error)
}

// FeeRecorder appends fee audit rows inside the finalization transaction
type FeeRecorder interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, rec *fee.Record) error
}

// UserDirectory resolves the user identity stamped onto fee records
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Notifier reports outcomes to the affected user after commit
type Notifier interface {
	NotifyTopUpApproved(ctx context.Context, userID uuid.UUID, amount int64, requestID uuid.UUID, displayID string)
	NotifyTopUpRejected(ctx context.Context, userID uuid.UUID, requestID uuid.UUID, displayID, reason string)
	NotifyWithdrawalApproved(ctx context.Context, userID uuid.UUID, amount int64, requestID uuid.UUID, displayID string)
	NotifyWithdrawalRejected(ctx context.Context, userID uuid.UUID, refunded int64, requestID uuid.UUID, displayID, reason string)
}

// Service drives wallet transaction requests through
// processing -> approved | failed.
type Service struct {
	repo     *Repository
	ledger   LedgerStore
	fees     FeeRecorder
	settings SettingsProvider
	users    UserDirectory
	notifier Notifier // nil disables notifications
}

func NewService(repo *Repository, ledger LedgerStore, fees FeeRecorder, settingsProvider SettingsProvider, users UserDirectory, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		fees:     fees,
		settings: settingsProvider,
		users:    users,
		notifier: notifier,
	}
}

// CreateParams carries the user-supplied fields of a new request
type CreateParams struct {
	UserID   uuid.UUID
	Type     RequestType
	Amount   int64
	Method   string // payment method for top_up, withdrawal method for withdrawal
	UserTxID string // user-supplied external transaction reference, top_up only
}

// Create validates a request against the gateway limits and opens it in
// processing state. Withdrawals escrow amount+fee out of the balance
// immediately; the whole creation fails if the debit does. Top-ups move
// nothing until approval.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Request, error) {
	if !p.Type.Valid() {
		return nil, ErrInvalidType
	}
	if p.Method == "" {
		return nil, ErrMethodRequired
	}
	if p.Amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	kind := fee.KindDeposit
	if p.Type == RequestTypeWithdrawal {
		kind = fee.KindWithdrawal
	}
	if err := fee.ValidateAmount(p.Amount, kind, cfg); err != nil {
		return nil, err
	}

	feeAmount := fee.Compute(p.Amount, cfg)

	req := &Request{
		ID:     uuid.New(),
		UserID: p.UserID,
		Type:   p.Type,
		Amount: p.Amount,
		Fee:    feeAmount,
		Status: StatusProcessing,
	}
	if p.Type == RequestTypeTopUp {
		req.PaymentMethod = sql.NullString{String: p.Method, Valid: true}
		if p.UserTxID != "" {
			req.UserTxID = sql.NullString{String: p.UserTxID, Valid: true}
		}
	} else {
		req.WithdrawalMethod = sql.NullString{String: p.Method, Valid: true}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.InsertTx(ctx, tx, req); err != nil {
		return nil, err
	}

	if p.Type == RequestTypeWithdrawal {
		// Escrow: principal plus fee leave the visible balance now and come
		// back only through a rejection refund
		desc := fmt.Sprintf("Withdrawal request %s", req.TransactionID)
		if _, err := s.ledger.DebitTx(ctx, tx, p.UserID, req.Amount+req.Fee, wallet.TypeWithdrawal, desc, uuid.NullUUID{}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.ID.String()).
		Str("transaction_id", req.TransactionID).
		Str("user_id", p.UserID.String()).
		Str("type", string(p.Type)).
		Int64("amount", p.Amount).
		Int64("fee", feeAmount).
		Msg("wallet transaction request created")

	return req, nil
}

// ProcessParams carries an admin decision on a processing request
type ProcessParams struct {
	RequestID uuid.UUID
	Decision  Decision
	ActorID   uuid.UUID
	Note      string
	Reason    string
}

// Process finalizes a request. The status check and every resulting ledger
// and fee mutation share one transaction with the request row locked, so
// two concurrent admins produce exactly one transition and one
// ErrAlreadyProcessed.
func (s *Service) Process(ctx context.Context, p ProcessParams) (*Request, error) {
	if p.Decision != DecisionApproved && p.Decision != DecisionFailed {
		return nil, ErrInvalidDecision
	}
	if p.Decision == DecisionFailed && p.Reason == "" {
		return nil, ErrReasonRequired
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := s.repo.LockByIDTx(ctx, tx, p.RequestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}

	req.ProcessedBy = uuid.NullUUID{UUID: p.ActorID, Valid: true}
	if p.Note != "" {
		req.AdminNote = sql.NullString{String: p.Note, Valid: true}
	}

	switch p.Decision {
	case DecisionApproved:
		req.Status = StatusApproved
		req.ApprovedBy = uuid.NullUUID{UUID: p.ActorID, Valid: true}
		if err := s.approveTx(ctx, tx, req); err != nil {
			return nil, err
		}
	case DecisionFailed:
		req.Status = StatusFailed
		req.RejectedBy = uuid.NullUUID{UUID: p.ActorID, Valid: true}
		req.RejectionReason = sql.NullString{String: p.Reason, Valid: true}
		if err := s.rejectTx(ctx, tx, req); err != nil {
			return nil, err
		}
	}

	if err := s.repo.FinalizeTx(ctx, tx, req); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.ID.String()).
		Str("transaction_id", req.TransactionID).
		Str("decision", string(p.Decision)).
		Str("actor_id", p.ActorID.String()).
		Msg("wallet transaction request finalized")

	s.notifyOutcome(ctx, req, p.Reason)

	return s.repo.GetByID(ctx, p.RequestID)
}

// approveTx applies the approval leg. Top-ups credit the principal (never
// the fee) now; withdrawals already escrowed at creation and move nothing.
// Either kind writes its fee audit row when a fee was charged.
func (s *Service) approveTx(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	if req.Type == RequestTypeTopUp {
		desc := fmt.Sprintf("Top-up %s approved", req.TransactionID)
		if _, err := s.ledger.CreditTx(ctx, tx, req.UserID, req.Amount, wallet.TypeDeposit, desc, uuid.NullUUID{}); err != nil {
			return err
		}
	}

	if req.Fee > 0 {
		u, err := s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		feeType := fee.RecordTypeTopUp
		if req.Type == RequestTypeWithdrawal {
			feeType = fee.RecordTypeWithdrawal
		}
		rec := &fee.Record{
			FeeType:        feeType,
			Username:       u.Username,
			Email:          u.Email,
			Amount:         req.Fee,
			OriginalAmount: req.Amount,
			ReferenceID:    req.TransactionID,
		}
		if err := s.fees.InsertTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return nil
}

// rejectTx applies the rejection leg. A rejected withdrawal refunds the
// full escrow, principal and fee, as a rejection_refund row referencing
// the original transaction. A rejected top-up escrowed nothing, so nothing
// comes back. No fee record is written on either path.
func (s *Service) rejectTx(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	if req.Type != RequestTypeWithdrawal {
		return nil
	}

	desc := fmt.Sprintf("Rejection refund for %s", req.TransactionID)
	_, err := s.ledger.CreditTx(ctx, tx, req.UserID, req.Amount+req.Fee, wallet.TypeRejectionRefund, desc, uuid.NullUUID{})
	return err
}

func (s *Service) notifyOutcome(ctx context.Context, req *Request, reason string) {
	if s.notifier == nil {
		return
	}

	switch {
	case req.Status == StatusApproved && req.Type == RequestTypeTopUp:
		s.notifier.NotifyTopUpApproved(ctx, req.UserID, req.Amount, req.ID, req.TransactionID)
	case req.Status == StatusApproved && req.Type == RequestTypeWithdrawal:
		s.notifier.NotifyWithdrawalApproved(ctx, req.UserID, req.Amount, req.ID, req.TransactionID)
	case req.Status == StatusFailed && req.Type == RequestTypeTopUp:
		s.notifier.NotifyTopUpRejected(ctx, req.UserID, req.ID, req.TransactionID, reason)
	case req.Status == StatusFailed && req.Type == RequestTypeWithdrawal:
		s.notifier.NotifyWithdrawalRejected(ctx, req.UserID, req.EscrowedAmount(), req.ID, req.TransactionID, reason)
	}
}

// GetByID returns a single request
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByUser returns a user's requests
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListPending returns the admin processing queue
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByStatus(ctx, StatusProcessing, limit, offset)
}
