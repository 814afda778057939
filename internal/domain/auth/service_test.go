package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/auth"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/security"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/user"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/jwt"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/password"
)

type fakeUserRepo struct {
	byEmail map[string]*user.User
	byID    map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*user.User{}, byID: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type fakeLockout struct {
	failures map[string]int
	locked   map[string]bool
}

func newFakeLockout() *fakeLockout {
	return &fakeLockout{failures: map[string]int{}, locked: map[string]bool{}}
}

func (f *fakeLockout) GetLockoutInfo(_ context.Context, ip, _ string) (*security.LockoutInfo, error) {
	if f.locked[ip] {
		return &security.LockoutInfo{Locked: true, Message: "Too many failed login attempts. Try again in 60 minutes."}, nil
	}
	return &security.LockoutInfo{}, nil
}

func (f *fakeLockout) RecordFailedLogin(_ context.Context, ip, _, role string) (string, error) {
	if role == "admin" || role == "employee" {
		return "", nil
	}
	f.failures[ip]++
	if f.failures[ip] >= 3 {
		f.locked[ip] = true
		return "Too many failed login attempts. Try again in 60 minutes.", nil
	}
	return "", nil
}

func (f *fakeLockout) Reset(_ context.Context, ip string) error {
	delete(f.failures, ip)
	delete(f.locked, ip)
	return nil
}

func newTestService(t *testing.T, users user.Repository, lockout auth.Lockout) *auth.Service {
	t.Helper()
	tokens := jwt.NewService("test-secret", 15*time.Minute, 24*time.Hour)
	return auth.NewService(users, tokens, lockout, nil)
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, plaintext, role string) *user.User {
	t.Helper()
	hash, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     "u_" + email[:3],
		PasswordHash: hash,
		Role:         user.Role(role),
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return u
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	users := newFakeUserRepo()
	lockout := newFakeLockout()
	svc := newTestService(t, users, lockout)
	seedUser(t, users, "a@test.com", "correct-horse", "user")
	ctx := context.Background()

	// Two failures, then a success
	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, "a@test.com", "wrong", "10.0.0.1"); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	result, err := svc.Login(ctx, "a@test.com", "correct-horse", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if result.Tokens.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("expected access TTL 900s, got %d", result.Tokens.ExpiresIn)
	}
	if lockout.failures["10.0.0.1"] != 0 {
		t.Fatalf("expected counter reset, got %d", lockout.failures["10.0.0.1"])
	}
}

func TestLoginLockedAfterThreeFailures(t *testing.T) {
	users := newFakeUserRepo()
	lockout := newFakeLockout()
	svc := newTestService(t, users, lockout)
	seedUser(t, users, "b@test.com", "correct-horse", "user")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		svc.Login(ctx, "b@test.com", "wrong", "10.0.0.2")
	}

	// Third failure reports the lockout
	_, err := svc.Login(ctx, "b@test.com", "wrong", "10.0.0.2")
	var locked *auth.LockedOutError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedOutError on third failure, got %v", err)
	}

	// Even the right password is refused while locked
	if _, err := svc.Login(ctx, "b@test.com", "correct-horse", "10.0.0.2"); !errors.As(err, &locked) {
		t.Fatalf("expected LockedOutError while locked, got %v", err)
	}
}

func TestLoginUnknownEmailCountsAsFailure(t *testing.T) {
	users := newFakeUserRepo()
	lockout := newFakeLockout()
	svc := newTestService(t, users, lockout)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "ghost@test.com", "whatever", "10.0.0.3"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if lockout.failures["10.0.0.3"] != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", lockout.failures["10.0.0.3"])
	}
}

func TestStaffLoginNeverLocks(t *testing.T) {
	users := newFakeUserRepo()
	lockout := newFakeLockout()
	svc := newTestService(t, users, lockout)
	seedUser(t, users, "admin@test.com", "correct-horse", "admin")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Login(ctx, "admin@test.com", "wrong", "10.0.0.4"); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	if _, err := svc.Login(ctx, "admin@test.com", "correct-horse", "10.0.0.4"); err != nil {
		t.Fatalf("staff login must succeed, got %v", err)
	}
}

func TestRegisterIssuesTokens(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(t, users, newFakeLockout())
	ctx := context.Background()

	result, err := svc.Register(ctx, auth.RegisterParams{
		Email:    "new@test.com",
		Username: "newcomer",
		Password: "long-enough-pass",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.User.Role != user.RoleUser {
		t.Fatalf("expected role user, got %s", result.User.Role)
	}
	if result.Tokens.AccessToken == "" {
		t.Fatal("expected access token")
	}

	if _, err := svc.Register(ctx, auth.RegisterParams{
		Email:    "new@test.com",
		Username: "other",
		Password: "long-enough-pass",
	}); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsUnknownReferrer(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestService(t, users, newFakeLockout())
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{
		Email:      "ref@test.com",
		Username:   "referred",
		Password:   "long-enough-pass",
		ReferrerID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
	})
	if !errors.Is(err, auth.ErrInvalidReferrer) {
		t.Fatalf("expected ErrInvalidReferrer, got %v", err)
	}
}
