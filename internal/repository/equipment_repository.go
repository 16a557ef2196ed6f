package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/libroom/reserve/internal/model"
)

// EquipmentRepo reads the equipment catalogue. Prices are flat per
// reservation, not per hour.
type EquipmentRepo struct{ DB *sql.DB }

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{DB: db} }

// List returns the full catalogue ordered by name.
func (r *EquipmentRepo) List(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name,price FROM equipment ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Equipment, 0)
	for rows.Next() {
		var e model.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.Price); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PricesByIDsTx resolves catalogue prices for the given IDs inside an
// existing transaction. Unknown IDs are simply absent from the result;
// the caller compares lengths to detect them.
func (r *EquipmentRepo) PricesByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error) {
	prices := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := "SELECT id, price FROM equipment WHERE id IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}
