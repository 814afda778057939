package security

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
)

const (
	maxAttempts  = 3
	lockDuration = time.Hour
)

// Store is the persistence the lockout engine needs
type Store interface {
	GetByIP(ctx context.Context, ip string) (*LoginAccess, error)
	IncrementAttempt(ctx context.Context, ip, email string) (*LoginAccess, error)
	Lock(ctx context.Context, ip string, until time.Time) error
	Reset(ctx context.Context, ip string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Toggle reports whether login protection is switched on platform-wide
type Toggle interface {
	LoginProtectionEnabled(ctx context.Context) bool
}

// Service locks an IP out of login for an hour after three failed attempts.
// Staff roles are exempt; any other role, including an unknown one, is
// protected. Expired locks clear lazily on the next check.
type Service struct {
	store  Store
	toggle Toggle
	now    func() time.Time
}

func NewService(store Store, toggle Toggle) *Service {
	return &Service{store: store, toggle: toggle, now: time.Now}
}

// RecordFailedLogin counts a failed attempt from the IP and applies the
// lock when the threshold is reached. Returns the lockout message when the
// caller is now locked, empty string otherwise.
func (s *Service) RecordFailedLogin(ctx context.Context, ip, email, role string) (string, error) {
	if middleware.IsStaff(role) {
		return "", nil
	}

	a, err := s.store.IncrementAttempt(ctx, ip, email)
	if err != nil {
		return "", err
	}

	if !s.toggle.LoginProtectionEnabled(ctx) {
		return "", nil
	}

	if a.AttemptCount >= maxAttempts && !a.LockActive(s.now()) {
		until := s.now().Add(lockDuration)
		if err := s.store.Lock(ctx, ip, until); err != nil {
			return "", err
		}
		log.Warn().
			Str("ip", ip).
			Str("email", email).
			Int("attempts", a.AttemptCount).
			Time("locked_until", until).
			Msg("login lockout applied")
		return lockMessage(lockDuration), nil
	}

	if a.LockActive(s.now()) {
		return lockMessage(a.LockedUntil.Time.Sub(s.now())), nil
	}
	return "", nil
}

// GetLockoutInfo answers whether the IP may attempt a login right now.
// Expired locks are cleared here rather than by a background job, so the
// answer is correct even if the sweeper lags.
func (s *Service) GetLockoutInfo(ctx context.Context, ip, role string) (*LockoutInfo, error) {
	if middleware.IsStaff(role) {
		return &LockoutInfo{}, nil
	}
	if !s.toggle.LoginProtectionEnabled(ctx) {
		return &LockoutInfo{}, nil
	}

	a, err := s.store.GetByIP(ctx, ip)
	if err != nil {
		return nil, err
	}
	if a == nil || a.AttemptCount < maxAttempts {
		return &LockoutInfo{}, nil
	}

	now := s.now()
	if !a.LockActive(now) {
		if a.LockedUntil.Valid {
			if err := s.store.Reset(ctx, ip); err != nil {
				log.Error().Err(err).Str("ip", ip).Msg("failed to clear expired lockout")
			}
		}
		return &LockoutInfo{}, nil
	}

	remaining := a.LockedUntil.Time.Sub(now)
	return &LockoutInfo{
		Locked:           true,
		RemainingMinutes: int(remaining.Minutes()),
		RemainingSeconds: int(remaining.Seconds()) % 60,
		Message:          lockMessage(remaining),
	}, nil
}

// Reset clears the counter and any lock, used on successful login and by
// admin unlock.
func (s *Service) Reset(ctx context.Context, ip string) error {
	return s.store.Reset(ctx, ip)
}

// SweepExpired deletes lapsed locks. Run periodically from main.
func (s *Service) SweepExpired(ctx context.Context) {
	removed, err := s.store.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("lockout sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("expired lockouts swept")
	}
}

func lockMessage(remaining time.Duration) string {
	if remaining >= time.Minute {
		minutes := int((remaining + time.Minute - 1) / time.Minute)
		return fmt.Sprintf("Too many failed login attempts. Try again in %d minutes.", minutes)
	}
	return fmt.Sprintf("Too many failed login attempts. Try again in %d seconds.", int(remaining.Seconds()))
}
