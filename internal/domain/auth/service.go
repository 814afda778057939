package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/security"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/user"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/jwt"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/password"
)

// Lockout is the slice of the lockout engine the login flow needs
type Lockout interface {
	GetLockoutInfo(ctx context.Context, ip, role string) (*security.LockoutInfo, error)
	RecordFailedLogin(ctx context.Context, ip, email, role string) (string, error)
	Reset(ctx context.Context, ip string) error
}

// ReferralRegistrar opens the pending commission for a referred signup
type ReferralRegistrar interface {
	RegisterReferral(ctx context.Context, referrerID, referredUserID uuid.UUID) error
}

type Service struct {
	users    user.Repository
	tokens   *jwt.Service
	lockout  Lockout
	referral ReferralRegistrar // nil disables referral tracking
}

func NewService(users user.Repository, tokens *jwt.Service, lockout Lockout, referral ReferralRegistrar) *Service {
	return &Service{users: users, tokens: tokens, lockout: lockout, referral: referral}
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type LoginResult struct {
	User   *user.User `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}

// Login authenticates by email and password, with the lockout engine
// consulted before any password work. A failure counts against the caller's
// IP; success clears the counter.
func (s *Service) Login(ctx context.Context, email, plaintext, ip string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	// An unknown email carries no role, which the engine treats as protected
	role := ""
	if u != nil {
		role = string(u.Role)
	}

	info, err := s.lockout.GetLockoutInfo(ctx, ip, role)
	if err != nil {
		return nil, err
	}
	if info.Locked {
		return nil, &LockedOutError{Message: info.Message}
	}

	if u == nil || !password.Verify(plaintext, u.PasswordHash) {
		msg, recErr := s.lockout.RecordFailedLogin(ctx, ip, email, role)
		if recErr != nil {
			log.Error().Err(recErr).Str("ip", ip).Msg("failed to record login failure")
		}
		if msg != "" {
			return nil, &LockedOutError{Message: msg}
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.lockout.Reset(ctx, ip); err != nil {
		log.Error().Err(err).Str("ip", ip).Msg("failed to reset login counter")
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Str("ip", ip).Msg("user logged in")
	return &LoginResult{User: u, Tokens: tokens}, nil
}

type RegisterParams struct {
	Email      string
	Username   string
	Password   string
	ReferrerID uuid.NullUUID
}

// Register creates the account and, for referred signups, the pending
// referral commission. A commission failure is logged and does not undo
// the registration.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*LoginResult, error) {
	if p.ReferrerID.Valid {
		if _, err := s.users.GetByID(ctx, p.ReferrerID.UUID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, ErrInvalidReferrer
			}
			return nil, err
		}
	}

	hash, err := password.Hash(p.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: hash,
		Role:         user.RoleUser,
		ReferrerID:   p.ReferrerID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if p.ReferrerID.Valid && s.referral != nil {
		if err := s.referral.RegisterReferral(ctx, p.ReferrerID.UUID, u.ID); err != nil {
			log.Error().Err(err).
				Str("user_id", u.ID.String()).
				Str("referrer_id", p.ReferrerID.UUID.String()).
				Msg("failed to register referral commission")
		}
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Msg("user registered")
	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a fresh pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) issueTokens(u *user.User) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, expiresAt, err := s.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		ExpiresIn:        int64(s.tokens.GetAccessTTL().Seconds()),
		RefreshToken:     refresh,
		RefreshExpiresAt: expiresAt,
	}, nil
}
