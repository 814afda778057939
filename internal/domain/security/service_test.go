package security

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	mu   sync.Mutex
	rows map[string]*LoginAccess
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*LoginAccess{}}
}

func (f *fakeStore) GetByIP(_ context.Context, ip string) (*LoginAccess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[ip]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) IncrementAttempt(_ context.Context, ip, email string) (*LoginAccess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[ip]
	if !ok {
		a = &LoginAccess{ID: uuid.New(), IPAddress: ip}
		f.rows[ip] = a
	}
	a.AttemptCount++
	a.LastAttempt = time.Now()
	a.LastEmail = email
	cp := *a
	return &cp, nil
}

func (f *fakeStore) Lock(_ context.Context, ip string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.rows[ip]; ok {
		a.LockedUntil = sql.NullTime{Time: until, Valid: true}
	}
	return nil
}

func (f *fakeStore) Reset(_ context.Context, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, ip)
	return nil
}

func (f *fakeStore) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for ip, a := range f.rows {
		if a.LockedUntil.Valid && a.LockedUntil.Time.Before(now) {
			delete(f.rows, ip)
			n++
		}
	}
	return n, nil
}

type fakeToggle struct{ enabled bool }

func (f fakeToggle) LoginProtectionEnabled(context.Context) bool { return f.enabled }

func newTestService(store *fakeStore, enabled bool) *Service {
	return &Service{store: store, toggle: fakeToggle{enabled: enabled}, now: time.Now}
}

func TestLockoutAfterThreeFailures(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		msg, err := svc.RecordFailedLogin(ctx, "10.0.0.1", "a@b.c", "user")
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if msg != "" {
			t.Fatalf("expected no lockout at attempt %d, got %q", i+1, msg)
		}

		info, err := svc.GetLockoutInfo(ctx, "10.0.0.1", "user")
		if err != nil {
			t.Fatalf("info failed: %v", err)
		}
		if info.Locked {
			t.Fatalf("locked too early at attempt %d", i+1)
		}
	}

	msg, err := svc.RecordFailedLogin(ctx, "10.0.0.1", "a@b.c", "user")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !strings.Contains(msg, "Try again") {
		t.Fatalf("expected lockout message on third failure, got %q", msg)
	}

	info, err := svc.GetLockoutInfo(ctx, "10.0.0.1", "user")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !info.Locked {
		t.Fatal("expected lock after three failures")
	}
	if info.RemainingMinutes < 55 || info.RemainingMinutes > 60 {
		t.Fatalf("expected roughly an hour remaining, got %d minutes", info.RemainingMinutes)
	}
}

func TestLockMessageCeilsMinutes(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{time.Hour, "Try again in 60 minutes."},
		{59*time.Minute + 30*time.Second, "Try again in 60 minutes."},
		{time.Minute, "Try again in 1 minutes."},
		{45 * time.Second, "Try again in 45 seconds."},
	}
	for _, tc := range cases {
		got := lockMessage(tc.remaining)
		if !strings.HasSuffix(got, tc.want) {
			t.Errorf("lockMessage(%v) = %q, want suffix %q", tc.remaining, got, tc.want)
		}
	}
}

func TestStaffExemptFromLockout(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, true)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if msg, _ := svc.RecordFailedLogin(ctx, "10.0.0.2", "admin@b.c", "admin"); msg != "" {
			t.Fatalf("admin must never lock, got %q", msg)
		}
		if msg, _ := svc.RecordFailedLogin(ctx, "10.0.0.2", "emp@b.c", "employee"); msg != "" {
			t.Fatalf("employee must never lock, got %q", msg)
		}
	}

	info, err := svc.GetLockoutInfo(ctx, "10.0.0.2", "admin")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.Locked {
		t.Fatal("staff must never be locked")
	}
}

func TestUnknownRoleIsProtected(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.RecordFailedLogin(ctx, "10.0.0.3", "x@b.c", "superuser")
	}

	info, err := svc.GetLockoutInfo(ctx, "10.0.0.3", "superuser")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !info.Locked {
		t.Fatal("an unrecognized role must fall on the protected side")
	}
}

func TestExpiredLockClearsLazily(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.RecordFailedLogin(ctx, "10.0.0.4", "x@b.c", "user")
	}

	// Rewind the clock past the lock window
	svc.now = func() time.Time { return time.Now().Add(lockDuration + time.Minute) }

	info, err := svc.GetLockoutInfo(ctx, "10.0.0.4", "user")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.Locked {
		t.Fatal("expired lock must read as unlocked")
	}

	// The lazy clear removed the row, so the next failure starts fresh
	a, _ := store.GetByIP(ctx, "10.0.0.4")
	if a != nil {
		t.Fatalf("expected row cleared, got %+v", a)
	}
}

func TestResetClearsCounter(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, true)
	ctx := context.Background()

	svc.RecordFailedLogin(ctx, "10.0.0.5", "x@b.c", "user")
	svc.RecordFailedLogin(ctx, "10.0.0.5", "x@b.c", "user")

	if err := svc.Reset(ctx, "10.0.0.5"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	// Two more failures after the reset stay under the threshold
	svc.RecordFailedLogin(ctx, "10.0.0.5", "x@b.c", "user")
	msg, _ := svc.RecordFailedLogin(ctx, "10.0.0.5", "x@b.c", "user")
	if msg != "" {
		t.Fatalf("expected no lock after reset, got %q", msg)
	}
}

func TestToggleDisabledSkipsEnforcement(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if msg, _ := svc.RecordFailedLogin(ctx, "10.0.0.6", "x@b.c", "user"); msg != "" {
			t.Fatalf("disabled protection must not lock, got %q", msg)
		}
	}

	info, err := svc.GetLockoutInfo(ctx, "10.0.0.6", "user")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.Locked {
		t.Fatal("disabled protection must not report locked")
	}

	// Attempts were still counted while disabled
	a, _ := store.GetByIP(ctx, "10.0.0.6")
	if a == nil || a.AttemptCount != 5 {
		t.Fatalf("expected bookkeeping to continue, got %+v", a)
	}
}

func TestSweepExpiredRemovesOnlyLapsed(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, true)
	ctx := context.Background()

	store.IncrementAttempt(ctx, "10.0.0.7", "x@b.c")
	store.Lock(ctx, "10.0.0.7", time.Now().Add(-time.Minute))
	store.IncrementAttempt(ctx, "10.0.0.8", "y@b.c")
	store.Lock(ctx, "10.0.0.8", time.Now().Add(time.Hour))

	svc.SweepExpired(ctx)

	if a, _ := store.GetByIP(ctx, "10.0.0.7"); a != nil {
		t.Fatal("lapsed lock should be swept")
	}
	if a, _ := store.GetByIP(ctx, "10.0.0.8"); a == nil {
		t.Fatal("active lock must survive the sweep")
	}
}
