package security

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByIP(ctx context.Context, ip string) (*LoginAccess, error) {
	var a LoginAccess
	err := r.db.GetContext(ctx, &a, `SELECT * FROM login_access WHERE ip_address = $1`, ip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// IncrementAttempt bumps the counter for the IP in a single upsert. The
// increment happens in SQL, not read-modify-write, so parallel failures
// from one IP all count.
func (r *Repository) IncrementAttempt(ctx context.Context, ip, email string) (*LoginAccess, error) {
	var a LoginAccess
	err := r.db.GetContext(ctx, &a, `
		INSERT INTO login_access (id, ip_address, attempt_count, last_attempt, last_email)
		VALUES ($1, $2, 1, NOW(), $3)
		ON CONFLICT (ip_address) DO UPDATE
		SET attempt_count = login_access.attempt_count + 1,
		    last_attempt = NOW(),
		    last_email = EXCLUDED.last_email
		RETURNING *
	`, uuid.New(), ip, email)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Lock(ctx context.Context, ip string, until time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE login_access SET locked_until = $1 WHERE ip_address = $2
	`, until, ip)
	return err
}

// Reset drops the row entirely; the next failure starts a fresh count
func (r *Repository) Reset(ctx context.Context, ip string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM login_access WHERE ip_address = $1`, ip)
	return err
}

// DeleteExpired removes rows whose lock has lapsed, periodic hygiene
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM login_access WHERE locked_until IS NOT NULL AND locked_until < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
