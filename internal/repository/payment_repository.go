package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/libroom/reserve/internal/model"
)

// PaymentRepo persists payments. Every row carries a globally unique
// transaction_id; the table's unique index on that column is the last
// line of defence against double application, surfaced to callers as
// ErrDuplicateTransaction.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment inside the transaction and populates the
// generated ID. A collision on transaction_id returns
// ErrDuplicateTransaction.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments
	           (reservation_id, user_id, amount, method, bank_name, account_number, account_holder, transaction_id, status, paid_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		p.ReservationID, p.UserID, p.Amount, p.Method,
		p.BankName, p.AccountNumber, p.AccountHolder,
		p.TransactionID, p.Status, p.PaidAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateTransaction
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

const paymentCols = `id, reservation_id, user_id, amount, method, bank_name, account_number, account_holder, transaction_id, status, paid_at, created_at`

// CompletedByReservationTx returns the COMPLETED payment for a
// reservation inside the transaction, or sql.ErrNoRows when the
// reservation has no active payment.
func (r *PaymentRepo) CompletedByReservationTx(ctx context.Context, tx *sql.Tx, resID uint64) (model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments
	           WHERE reservation_id = ? AND status = 'COMPLETED' LIMIT 1 FOR UPDATE`
	var p model.Payment
	err := tx.QueryRowContext(ctx, q, resID).Scan(
		&p.ID, &p.ReservationID, &p.UserID, &p.Amount, &p.Method,
		&p.BankName, &p.AccountNumber, &p.AccountHolder,
		&p.TransactionID, &p.Status, &p.PaidAt, &p.CreatedAt)
	return p, err
}

// MarkRefundedTx moves a payment to REFUNDED inside the transaction.
func (r *PaymentRepo) MarkRefundedTx(ctx context.Context, tx *sql.Tx, paymentID uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE payments SET status = 'REFUNDED' WHERE id = ?", paymentID)
	return err
}

const paymentDetailQ = `SELECT p.id, p.reservation_id, p.user_id, u.name, rm.name,
                               DATE_FORMAT(r.res_date, '%Y-%m-%d'),
                               p.amount, p.method, p.transaction_id, p.status, p.paid_at
                        FROM payments p
                        JOIN reservations r ON r.id = p.reservation_id
                        JOIN rooms rm ON rm.id = r.room_id
                        LEFT JOIN users u ON u.id = p.user_id`

// ListByUser returns the user's payments, newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.PaymentDetail, error) {
	return r.listDetails(ctx, paymentDetailQ+` WHERE p.user_id = ? ORDER BY p.created_at DESC`, userID)
}

// ListAll returns every payment for the librarian view, newest first.
func (r *PaymentRepo) ListAll(ctx context.Context) ([]model.PaymentDetail, error) {
	return r.listDetails(ctx, paymentDetailQ + ` ORDER BY p.created_at DESC`)
}

// TotalByStatus sums payment amounts for the given status.
func (r *PaymentRepo) TotalByStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM payments WHERE status = ?", status).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (r *PaymentRepo) listDetails(ctx context.Context, query string, args ...interface{}) ([]model.PaymentDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PaymentDetail, 0)
	for rows.Next() {
		var d model.PaymentDetail
		var userName sql.NullString
		if err := rows.Scan(
			&d.ID, &d.ReservationID, &d.UserID, &userName, &d.RoomName,
			&d.Date, &d.Amount, &d.Method, &d.TransactionID, &d.Status, &d.PaidAt,
		); err != nil {
			return nil, err
		}
		if userName.Valid {
			d.UserName = userName.String
		} else {
			d.UserName = "Deleted User"
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
