package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/libroom/reserve/internal/model"
)

// RuleRepo reads and writes the booking_rules singleton row. When the
// row is missing the default quota applies, so a fresh database
// behaves correctly without seeding.
type RuleRepo struct{ DB *sql.DB }

func NewRuleRepo(db *sql.DB) *RuleRepo { return &RuleRepo{DB: db} }

// MaxActive returns the current quota ceiling.
func (r *RuleRepo) MaxActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT max_active FROM booking_rules WHERE id = 1").Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultMaxActive, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SetMaxActive upserts the quota ceiling.
func (r *RuleRepo) SetMaxActive(ctx context.Context, n int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO booking_rules (id, max_active) VALUES (1, ?) ON DUPLICATE KEY UPDATE max_active = VALUES(max_active)",
		n)
	return err
}
