package repository

import (
	"context"
	"database/sql"

	"github.com/libroom/reserve/internal/model"
)

// RoomRepo provides CRUD operations for study rooms. Rooms carry an
// hourly price in whole credits and a status enumeration
// ('AVAILABLE','MAINTENANCE'). Deleting a room cascades to its
// reservations; payments are left untouched as financial history.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomCols = "id,name,capacity,price_per_hour,status,created_at,updated_at"

// GetByID fetches a room by id. Returns sql.ErrNoRows when absent.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return scanRoom(r.db.QueryRowContext(ctx,
		"SELECT "+roomCols+" FROM rooms WHERE id=? LIMIT 1", id))
}

// GetTx fetches a room inside an existing transaction without locking.
func (r *RoomRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	return scanRoom(tx.QueryRowContext(ctx,
		"SELECT "+roomCols+" FROM rooms WHERE id=? LIMIT 1", id))
}

// GetForUpdateTx fetches a room with a row lock. Concurrent bookings of
// the same room queue on this lock, which keeps the availability scan
// and the insert that follows it atomic.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	return scanRoom(tx.QueryRowContext(ctx,
		"SELECT "+roomCols+" FROM rooms WHERE id=? FOR UPDATE", id))
}

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return r.list(ctx, "SELECT "+roomCols+" FROM rooms ORDER BY name")
}

// ListByStatus returns rooms in the given status ordered by name.
func (r *RoomRepo) ListByStatus(ctx context.Context, status model.RoomStatus) ([]model.Room, error) {
	return r.list(ctx, "SELECT "+roomCols+" FROM rooms WHERE status=? ORDER BY name", status)
}

// Create inserts a room and populates the generated ID.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO rooms (name, capacity, price_per_hour, status) VALUES (?,?,?,?)",
		room.Name, room.Capacity, room.PricePerHour, room.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// UpdateCapacity changes a room's headcount capacity.
func (r *RoomRepo) UpdateCapacity(ctx context.Context, id uint64, capacity int) error {
	_, err := r.db.ExecContext(ctx, "UPDATE rooms SET capacity=? WHERE id=?", capacity, id)
	return err
}

// UpdateStatus changes a room's status.
func (r *RoomRepo) UpdateStatus(ctx context.Context, id uint64, status model.RoomStatus) error {
	_, err := r.db.ExecContext(ctx, "UPDATE rooms SET status=? WHERE id=?", status, id)
	return err
}

// DeleteCascadeTx removes a room, its reservations and its equipment
// links inside the provided transaction. Payment rows keep the
// reservation ID as a historical reference.
func (r *RoomRepo) DeleteCascadeTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE re FROM reservation_equipment re
		 JOIN reservations res ON res.id = re.reservation_id
		 WHERE res.room_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE room_id=?", id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	return err
}

// CountByStatus returns the number of rooms per status.
func (r *RoomRepo) CountByStatus(ctx context.Context) (map[model.RoomStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM rooms GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[model.RoomStatus]int)
	for rows.Next() {
		var status model.RoomStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *RoomRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var m model.Room
		if err := rows.Scan(&m.ID, &m.Name, &m.Capacity, &m.PricePerHour, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanRoom(row *sql.Row) (model.Room, error) {
	var m model.Room
	err := row.Scan(&m.ID, &m.Name, &m.Capacity, &m.PricePerHour, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
