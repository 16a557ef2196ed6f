package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/libroom/reserve/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// equipment links. A reservation occupies the half-open slot range
// [start_slot, end_slot) of a room on a calendar day. The overlap scan
// in HasOverlapTx is the single source of truth for availability; it
// locks matching rows so two transactions cannot both find the range
// free. All timestamp fields are assumed to be stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CountActiveByUserTx counts the user's PENDING and CONFIRMED
// reservations inside the transaction. Used for quota enforcement.
func (r *ReservationRepo) CountActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations
	           WHERE user_id = ? AND status IN ('PENDING','CONFIRMED')`
	var n int
	err := tx.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

// HasOverlapTx reports whether any active reservation on the room and
// date intersects [startSlot, endSlot). Two half-open ranges intersect
// unless one ends at or before the other starts, so back-to-back
// bookings sharing a boundary slot index do not collide. excludeID > 0
// skips that reservation's own row so a revision does not conflict
// with itself. FOR UPDATE locks the matching rows for the duration of
// the caller's transaction.
func (r *ReservationRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, date string, startSlot, endSlot int, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
	           WHERE room_id = ? AND res_date = ?
	             AND status IN ('PENDING','CONFIRMED')
	             AND id <> ?
	             AND NOT (end_slot <= ? OR start_slot >= ?)
	           FOR UPDATE`
	var n int
	err := tx.QueryRowContext(ctx, q, roomID, date, excludeID, startSlot, endSlot).Scan(&n)
	return n > 0, err
}

// HasOverlap is the non-locking variant used for read-only availability
// annotation outside a transaction.
func (r *ReservationRepo) HasOverlap(ctx context.Context, roomID uint64, date string, startSlot, endSlot int) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
	           WHERE room_id = ? AND res_date = ?
	             AND status IN ('PENDING','CONFIRMED')
	             AND NOT (end_slot <= ? OR start_slot >= ?)`
	var n int
	err := r.db.QueryRowContext(ctx, q, roomID, date, startSlot, endSlot).Scan(&n)
	return n > 0, err
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID. The caller must commit
// or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, room_id, res_date, start_slot, end_slot, headcount, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.RoomID, res.Date, res.StartSlot, res.EndSlot, res.Headcount, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetForUpdateTx fetches a reservation with a row lock so that payment
// and cancellation cannot race each other on the same booking.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	const q = `SELECT id, user_id, room_id, DATE_FORMAT(res_date, '%Y-%m-%d'), start_slot, end_slot, headcount, status, created_at, updated_at
	           FROM reservations WHERE id = ? FOR UPDATE`
	var m model.Reservation
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.UserID, &m.RoomID, &m.Date, &m.StartSlot, &m.EndSlot,
		&m.Headcount, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// UpdateScheduleTx rewrites the room, date and slot range of a
// reservation inside the transaction.
func (r *ReservationRepo) UpdateScheduleTx(ctx context.Context, tx *sql.Tx, id, roomID uint64, date string, startSlot, endSlot int) error {
	const q = `UPDATE reservations SET room_id = ?, res_date = ?, start_slot = ?, end_slot = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, roomID, date, startSlot, endSlot, id)
	return err
}

// UpdateStatusTx moves a reservation to the given status inside the
// transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE reservations SET status = ? WHERE id = ?", status, id)
	return err
}

// AttachEquipmentTx inserts the reservation's equipment links in a
// single statement. Passing an empty slice has no effect.
func (r *ReservationRepo) AttachEquipmentTx(ctx context.Context, tx *sql.Tx, resID uint64, equipmentIDs []uint64) error {
	if len(equipmentIDs) == 0 {
		return nil
	}
	query := "INSERT INTO reservation_equipment (reservation_id, equipment_id) VALUES "
	args := make([]interface{}, 0, len(equipmentIDs)*2)
	for i, eid := range equipmentIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, resID, eid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DetachEquipmentTx removes all equipment links of a reservation.
func (r *ReservationRepo) DetachEquipmentTx(ctx context.Context, tx *sql.Tx, resID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM reservation_equipment WHERE reservation_id = ?", resID)
	return err
}

// EquipmentIDsTx returns the equipment IDs linked to a reservation.
func (r *ReservationRepo) EquipmentIDsTx(ctx context.Context, tx *sql.Tx, resID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx, "SELECT equipment_id FROM reservation_equipment WHERE reservation_id = ?", resID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const summaryQ = `SELECT r.id, r.user_id, u.name, r.room_id, rm.name,
                         DATE_FORMAT(r.res_date, '%Y-%m-%d'), r.start_slot, r.end_slot,
                         r.headcount, r.status
                  FROM reservations r
                  JOIN rooms rm ON rm.id = r.room_id
                  LEFT JOIN users u ON u.id = r.user_id`

// ListByUser returns all reservations for the given user along with
// room and equipment details, newest first. When no reservations
// exist, an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationSummary, error) {
	return r.listSummaries(ctx, summaryQ+` WHERE r.user_id = ? ORDER BY r.created_at DESC`, userID)
}

// ListAll returns every reservation with member and room context for
// the librarian view, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.ReservationSummary, error) {
	return r.listSummaries(ctx, summaryQ + ` ORDER BY r.created_at DESC`)
}

// Recent returns the newest reservations up to limit.
func (r *ReservationRepo) Recent(ctx context.Context, limit int) ([]model.ReservationSummary, error) {
	return r.listSummaries(ctx, summaryQ+` ORDER BY r.created_at DESC LIMIT ?`, limit)
}

// CountByStatus returns the number of reservations per status.
func (r *ReservationRepo) CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM reservations GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[model.ReservationStatus]int)
	for rows.Next() {
		var status model.ReservationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *ReservationRepo) listSummaries(ctx context.Context, query string, args ...interface{}) ([]model.ReservationSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := make([]model.ReservationSummary, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var s model.ReservationSummary
		var userName sql.NullString
		if err := rows.Scan(
			&s.ID, &s.UserID, &userName, &s.RoomID, &s.RoomName,
			&s.Date, &s.StartSlot, &s.EndSlot, &s.Headcount, &s.Status,
		); err != nil {
			return nil, err
		}
		if userName.Valid {
			s.UserName = userName.String
		} else {
			s.UserName = "Deleted User"
		}
		s.Equipment = []model.Equipment{}
		index[s.ID] = len(summaries)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}
	// Populate equipment for all reservations in a single query
	ids := make([]interface{}, 0, len(summaries))
	placeholders := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
		placeholders = append(placeholders, "?")
	}
	eqQuery := `SELECT re.reservation_id, e.id, e.name, e.price
	            FROM reservation_equipment re
	            JOIN equipment e ON e.id = re.equipment_id
	            WHERE re.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	            ORDER BY re.reservation_id, e.name`
	erows, err := r.db.QueryContext(ctx, eqQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer erows.Close()
	for erows.Next() {
		var rid uint64
		var e model.Equipment
		if err := erows.Scan(&rid, &e.ID, &e.Name, &e.Price); err != nil {
			return nil, err
		}
		idx, ok := index[rid]
		if !ok {
			continue
		}
		summaries[idx].Equipment = append(summaries[idx].Equipment, e)
	}
	if err := erows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
