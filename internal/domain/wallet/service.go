package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier tells a user their balance was corrected by an admin
type Notifier interface {
	NotifyBalanceAdjusted(ctx context.Context, userID uuid.UUID, delta int64, reason string)
}

// Service wraps the repository with validation and logging
type Service struct {
	repo     *Repository
	notifier Notifier // nil disables notifications
}

func NewService(repo *Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]LedgerTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !txType.Valid() {
		return nil, ErrInvalidType
	}
	rec, err := s.repo.Credit(ctx, userID, amount, txType, description, relatedOrderID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("type", string(txType)).Str("display_id", rec.DisplayID).Msg("wallet credit applied")
	return rec, nil
}

func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount int64, txType TransactionType, description string, relatedOrderID uuid.NullUUID) (*LedgerTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !txType.Valid() {
		return nil, ErrInvalidType
	}
	rec, err := s.repo.Debit(ctx, userID, amount, txType, description, relatedOrderID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("type", string(txType)).Str("display_id", rec.DisplayID).Msg("wallet debit applied")
	return rec, nil
}

// Adjust applies an admin correction, signed either way
func (s *Service) Adjust(ctx context.Context, userID uuid.UUID, delta int64, reason string) (*LedgerTransaction, int64, error) {
	if delta == 0 {
		return nil, 0, ErrInvalidAmount
	}
	rec, balance, err := s.repo.Adjust(ctx, userID, delta, reason)
	if err != nil {
		return nil, 0, err
	}
	log.Info().Str("user_id", userID.String()).Int64("delta", delta).Int64("balance", balance).Str("reason", reason).Msg("wallet adjustment applied")

	if s.notifier != nil {
		s.notifier.NotifyBalanceAdjusted(ctx, userID, delta, reason)
	}
	return rec, balance, nil
}
