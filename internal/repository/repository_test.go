package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroom/reserve/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	return tx
}

func TestHasOverlapTxPassesArgsInOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations WHERE room_id = \? AND res_date = \?`).
		WithArgs(uint64(3), "2026-09-10", uint64(7), 2, 5).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	busy, err := repo.HasOverlapTx(context.Background(), tx, 3, "2026-09-10", 2, 5, 7)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasOverlapFreeRange(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
		WithArgs(uint64(3), "2026-09-10", 2, 5).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

	busy, err := repo.HasOverlap(context.Background(), 3, "2026-09-10", 2, 5)
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestCountActiveByUserTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations WHERE user_id = \?`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(2))

	n, err := repo.CountActiveByUserTx(context.Background(), tx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReservationCreateTxPopulatesID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(uint64(42), uint64(3), "2026-09-10", 2, 5, 4, model.ReservationPending).
		WillReturnResult(sqlmock.NewResult(11, 1))

	res := &model.Reservation{
		UserID: 42, RoomID: 3, Date: "2026-09-10",
		StartSlot: 2, EndSlot: 5, Headcount: 4,
		Status: model.ReservationPending,
	}
	require.NoError(t, repo.CreateTx(context.Background(), tx, res))
	assert.Equal(t, uint64(11), res.ID)
}

func TestPaymentCreateTxDuplicateTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'TXN-1-aa' for key 'payments.transaction_id'"))

	err := repo.CreateTx(context.Background(), tx, &model.Payment{
		ReservationID: 5, UserID: 42, Amount: 20,
		Method: model.MethodSystemBalance, TransactionID: "TXN-1-aa",
		Status: model.PaymentCompleted, PaidAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestPaymentCreateTxPopulatesID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnResult(sqlmock.NewResult(9, 1))

	p := &model.Payment{
		ReservationID: 5, UserID: 42, Amount: 20,
		Method: model.MethodSystemBalance, TransactionID: "TXN-1-bb",
		Status: model.PaymentCompleted, PaidAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateTx(context.Background(), tx, p))
	assert.Equal(t, uint64(9), p.ID)
}

func TestDebitSystemTxGuardsBalance(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBalanceRepo(db)
	tx := beginTx(t, db, mock)

	// The conditional update touches no rows when the balance cannot
	// cover the amount.
	mock.ExpectExec(`UPDATE balances SET system_credits = system_credits - \?`).
		WithArgs(int64(500), uint64(42), int64(500)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DebitSystemTx(context.Background(), tx, 42, 500)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDebitSystemTxApplies(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBalanceRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`UPDATE balances SET system_credits = system_credits - \?`).
		WithArgs(int64(20), uint64(42), int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DebitSystemTx(context.Background(), tx, 42, 20))
}

func TestMoveBankToSystemTxGuardsBankBalance(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBalanceRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`UPDATE balances SET bank_credits = bank_credits - \?, system_credits = system_credits \+ \?`).
		WithArgs(int64(300), int64(300), uint64(42), int64(300)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MoveBankToSystemTx(context.Background(), tx, 42, 300)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRuleMaxActiveFallsBackToDefault(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRuleRepo(db)

	mock.ExpectQuery(`SELECT max_active FROM booking_rules WHERE id = 1`).
		WillReturnError(sql.ErrNoRows)

	n, err := repo.MaxActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxActive, n)
}

func TestRuleMaxActiveReadsRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRuleRepo(db)

	mock.ExpectQuery(`SELECT max_active FROM booking_rules WHERE id = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"max_active"}).AddRow(5))

	n, err := repo.MaxActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestPricesByIDsTxOmitsUnknownIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEquipmentRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT id, price FROM equipment WHERE id IN \(\?,\?,\?\)`).
		WithArgs(uint64(1), uint64(2), uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price"}).
			AddRow(1, 15).
			AddRow(2, 5))

	prices, err := repo.PricesByIDsTx(context.Background(), tx, []uint64{1, 2, 99})
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Equal(t, int64(15), prices[1])
	assert.NotContains(t, prices, uint64(99))
}

func TestMarkRefundedTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`UPDATE payments SET status = 'REFUNDED' WHERE id = \?`).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkRefundedTx(context.Background(), tx, 9))
}
