package stats

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SiteStats is the single-row site-wide counter set.
type SiteStats struct {
	ID                 int       `db:"id" json:"-"`
	CompletedPurchases int64     `db:"completed_purchases" json:"completed_purchases"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// IncrementCompletedPurchasesTx bumps the counter inside the caller's
// transaction. The upsert keeps the single row self-seeding.
func (r *Repository) IncrementCompletedPurchasesTx(ctx context.Context, tx *sqlx.Tx) error {
	query := `
		INSERT INTO site_stats (id, completed_purchases, updated_at)
		VALUES (1, 1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET completed_purchases = site_stats.completed_purchases + 1,
		    updated_at = NOW()`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func (r *Repository) Get(ctx context.Context) (*SiteStats, error) {
	var s SiteStats
	query := `SELECT id, completed_purchases, updated_at FROM site_stats WHERE id = 1`

	if err := r.db.GetContext(ctx, &s, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &SiteStats{ID: 1}, nil
		}
		return nil, err
	}
	return &s, nil
}
