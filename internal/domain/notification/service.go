package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sender pushes realtime events to connected clients
type Sender interface {
	SendToUserJSON(userID uuid.UUID, payload any) error
}

// Service records notification events for users. Failures are logged and
// swallowed: notifying is never allowed to fail the money movement that
// triggered it.
type Service struct {
	repo   *Repository
	sender Sender // nil disables realtime fanout
}

func NewService(repo *Repository, sender Sender) *Service {
	return &Service{repo: repo, sender: sender}
}

// Create persists a notification and fans it out best-effort
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Str("type", string(notifType)).Msg("failed to record notification")
		return
	}

	if s.sender != nil {
		payload := map[string]interface{}{
			"type": "notification:new",
			"data": n,
		}
		if err := s.sender.SendToUserJSON(userID, payload); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("realtime notification delivery failed")
		}
	}
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Helper methods for the wallet core's outcomes ---

func (s *Service) NotifyTopUpApproved(ctx context.Context, userID uuid.UUID, amount int64, requestID uuid.UUID, displayID string) {
	s.Create(ctx, userID, TypeTopUpApproved,
		"Top-up approved",
		fmt.Sprintf("Your top-up %s was approved and %d was added to your balance", displayID, amount),
		&NotificationData{RequestID: &requestID, DisplayID: displayID, Amount: amount},
	)
}

func (s *Service) NotifyTopUpRejected(ctx context.Context, userID uuid.UUID, requestID uuid.UUID, displayID, reason string) {
	s.Create(ctx, userID, TypeTopUpRejected,
		"Top-up rejected",
		fmt.Sprintf("Your top-up %s was rejected: %s", displayID, reason),
		&NotificationData{RequestID: &requestID, DisplayID: displayID},
	)
}

func (s *Service) NotifyWithdrawalApproved(ctx context.Context, userID uuid.UUID, amount int64, requestID uuid.UUID, displayID string) {
	s.Create(ctx, userID, TypeWithdrawalApproved,
		"Withdrawal approved",
		fmt.Sprintf("Your withdrawal %s for %d was approved and is being paid out", displayID, amount),
		&NotificationData{RequestID: &requestID, DisplayID: displayID, Amount: amount},
	)
}

// NotifyWithdrawalRejected tells the user both principal and fee came back
func (s *Service) NotifyWithdrawalRejected(ctx context.Context, userID uuid.UUID, refunded int64, requestID uuid.UUID, displayID, reason string) {
	s.Create(ctx, userID, TypeWithdrawalRejected,
		"Withdrawal rejected",
		fmt.Sprintf("Your withdrawal %s was rejected (%s); %d including the fee was returned to your balance", displayID, reason, refunded),
		&NotificationData{RequestID: &requestID, DisplayID: displayID, Amount: refunded},
	)
}

func (s *Service) NotifyOrderCompleted(ctx context.Context, sellerID uuid.UUID, amount int64, orderID uuid.UUID) {
	s.Create(ctx, sellerID, TypeOrderCompleted,
		"Order completed",
		fmt.Sprintf("The buyer confirmed completion; %d was credited to your balance", amount),
		&NotificationData{OrderID: &orderID, Amount: amount},
	)
}

func (s *Service) NotifyOrderCancelled(ctx context.Context, buyerID uuid.UUID, amount int64, orderID uuid.UUID) {
	s.Create(ctx, buyerID, TypeOrderCancelled,
		"Order cancelled",
		fmt.Sprintf("The order was cancelled; %d was refunded to your balance", amount),
		&NotificationData{OrderID: &orderID, Amount: amount},
	)
}

func (s *Service) NotifyReferralPaid(ctx context.Context, referrerID uuid.UUID, amount int64, orderID uuid.UUID) {
	s.Create(ctx, referrerID, TypeReferralPaid,
		"Referral commission paid",
		fmt.Sprintf("Your referral completed their first order; %d was credited to your balance", amount),
		&NotificationData{OrderID: &orderID, Amount: amount},
	)
}

func (s *Service) NotifyBalanceAdjusted(ctx context.Context, userID uuid.UUID, delta int64, reason string) {
	s.Create(ctx, userID, TypeBalanceAdjusted,
		"Balance adjusted",
		fmt.Sprintf("An administrator adjusted your balance by %d: %s", delta, reason),
		&NotificationData{Amount: delta},
	)
}
