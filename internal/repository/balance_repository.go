package repository

import (
	"context"
	"database/sql"

	"github.com/libroom/reserve/internal/model"
)

// BalanceRepo persists the per-user ledgers. Debits are written as
// conditional updates that only fire when the balance covers the
// amount, so a balance can never go negative even if a caller skips
// its own check. A zero-row debit surfaces as sql.ErrNoRows.
type BalanceRepo struct {
	db *sql.DB
}

// NewBalanceRepo returns a new BalanceRepo bound to the given database.
func NewBalanceRepo(db *sql.DB) *BalanceRepo { return &BalanceRepo{db: db} }

// Get fetches a user's balances.
func (r *BalanceRepo) Get(ctx context.Context, userID uint64) (model.Balance, error) {
	var b model.Balance
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, system_credits, bank_credits FROM balances WHERE user_id = ? LIMIT 1",
		userID).Scan(&b.UserID, &b.SystemCredits, &b.BankCredits)
	return b, err
}

// GetForUpdateTx fetches a user's balances with a row lock so that
// concurrent debits of the same account serialize.
func (r *BalanceRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Balance, error) {
	var b model.Balance
	err := tx.QueryRowContext(ctx,
		"SELECT user_id, system_credits, bank_credits FROM balances WHERE user_id = ? FOR UPDATE",
		userID).Scan(&b.UserID, &b.SystemCredits, &b.BankCredits)
	return b, err
}

// DebitSystemTx removes amount from the system balance. The update is
// guarded so it cannot drive the balance below zero.
func (r *BalanceRepo) DebitSystemTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE balances SET system_credits = system_credits - ? WHERE user_id = ? AND system_credits >= ?",
		amount, userID, amount)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// CreditSystemTx adds amount to the system balance inside a transaction.
func (r *BalanceRepo) CreditSystemTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE balances SET system_credits = system_credits + ? WHERE user_id = ?",
		amount, userID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// CreditSystem adds amount to the system balance outside a transaction.
// Used by librarian credit grants.
func (r *BalanceRepo) CreditSystem(ctx context.Context, userID uint64, amount int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE balances SET system_credits = system_credits + ? WHERE user_id = ?",
		amount, userID)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// MoveBankToSystemTx transfers amount from the external bank balance
// into the system balance as a single guarded update.
func (r *BalanceRepo) MoveBankToSystemTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE balances SET bank_credits = bank_credits - ?, system_credits = system_credits + ?
		 WHERE user_id = ? AND bank_credits >= ?`,
		amount, amount, userID, amount)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// AppendTopUpTx inserts an immutable top-up history entry.
func (r *BalanceRepo) AppendTopUpTx(ctx context.Context, tx *sql.Tx, userID uint64, bankName string, amount int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO topup_transactions (user_id, bank_name, amount, status) VALUES (?,?,?,'SUCCESS')",
		userID, bankName, amount)
	return err
}

// TopUpsByUser returns the user's top-up history, newest first.
func (r *BalanceRepo) TopUpsByUser(ctx context.Context, userID uint64) ([]model.TopUpTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, bank_name, amount, status, created_at
		 FROM topup_transactions WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TopUpTransaction, 0)
	for rows.Next() {
		var t model.TopUpTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.BankName, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
