package booking

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroom/reserve/internal/model"
	"github.com/libroom/reserve/internal/queue"
	"github.com/libroom/reserve/internal/repository"
)

// ----- in-memory store fakes -----
//
// The fakes ignore the *sql.Tx handle; transaction boundaries are
// asserted separately through sqlmock's Begin/Commit/Rollback
// expectations.

type fakeRooms struct {
	rooms  map[uint64]model.Room
	nextID uint64
}

func (f *fakeRooms) get(id uint64) (model.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return model.Room{}, sql.ErrNoRows
	}
	return r, nil
}
func (f *fakeRooms) GetByID(_ context.Context, id uint64) (model.Room, error) { return f.get(id) }
func (f *fakeRooms) GetTx(_ context.Context, _ *sql.Tx, id uint64) (model.Room, error) {
	return f.get(id)
}
func (f *fakeRooms) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (model.Room, error) {
	return f.get(id)
}
func (f *fakeRooms) List(_ context.Context) ([]model.Room, error) {
	out := make([]model.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out, nil
}
func (f *fakeRooms) ListByStatus(_ context.Context, status model.RoomStatus) ([]model.Room, error) {
	out := make([]model.Room, 0)
	for _, r := range f.rooms {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeRooms) Create(_ context.Context, room *model.Room) error {
	f.nextID++
	room.ID = f.nextID
	f.rooms[room.ID] = *room
	return nil
}
func (f *fakeRooms) UpdateCapacity(_ context.Context, id uint64, capacity int) error {
	r := f.rooms[id]
	r.Capacity = capacity
	f.rooms[id] = r
	return nil
}
func (f *fakeRooms) UpdateStatus(_ context.Context, id uint64, status model.RoomStatus) error {
	r := f.rooms[id]
	r.Status = status
	f.rooms[id] = r
	return nil
}
func (f *fakeRooms) DeleteCascadeTx(_ context.Context, _ *sql.Tx, id uint64) error {
	delete(f.rooms, id)
	return nil
}
func (f *fakeRooms) CountByStatus(_ context.Context) (map[model.RoomStatus]int, error) {
	counts := make(map[model.RoomStatus]int)
	for _, r := range f.rooms {
		counts[r.Status]++
	}
	return counts, nil
}

type fakeReservations struct {
	items         map[uint64]model.Reservation
	equipment     map[uint64][]uint64
	activeCount   int
	overlap       bool
	lastExcludeID uint64
	nextID        uint64
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{
		items:     make(map[uint64]model.Reservation),
		equipment: make(map[uint64][]uint64),
	}
}

func (f *fakeReservations) CountActiveByUserTx(_ context.Context, _ *sql.Tx, _ uint64) (int, error) {
	return f.activeCount, nil
}
func (f *fakeReservations) HasOverlapTx(_ context.Context, _ *sql.Tx, _ uint64, _ string, _, _ int, excludeID uint64) (bool, error) {
	f.lastExcludeID = excludeID
	return f.overlap, nil
}
func (f *fakeReservations) HasOverlap(_ context.Context, _ uint64, _ string, _, _ int) (bool, error) {
	return f.overlap, nil
}
func (f *fakeReservations) CreateTx(_ context.Context, _ *sql.Tx, res *model.Reservation) error {
	f.nextID++
	res.ID = f.nextID
	f.items[res.ID] = *res
	return nil
}
func (f *fakeReservations) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (model.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return model.Reservation{}, sql.ErrNoRows
	}
	return r, nil
}
func (f *fakeReservations) UpdateScheduleTx(_ context.Context, _ *sql.Tx, id, roomID uint64, date string, startSlot, endSlot int) error {
	r := f.items[id]
	r.RoomID, r.Date, r.StartSlot, r.EndSlot = roomID, date, startSlot, endSlot
	f.items[id] = r
	return nil
}
func (f *fakeReservations) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.ReservationStatus) error {
	r := f.items[id]
	r.Status = status
	f.items[id] = r
	return nil
}
func (f *fakeReservations) AttachEquipmentTx(_ context.Context, _ *sql.Tx, resID uint64, ids []uint64) error {
	f.equipment[resID] = ids
	return nil
}
func (f *fakeReservations) DetachEquipmentTx(_ context.Context, _ *sql.Tx, resID uint64) error {
	delete(f.equipment, resID)
	return nil
}
func (f *fakeReservations) EquipmentIDsTx(_ context.Context, _ *sql.Tx, resID uint64) ([]uint64, error) {
	return f.equipment[resID], nil
}
func (f *fakeReservations) ListByUser(_ context.Context, _ uint64) ([]model.ReservationSummary, error) {
	return nil, nil
}
func (f *fakeReservations) ListAll(_ context.Context) ([]model.ReservationSummary, error) {
	return nil, nil
}
func (f *fakeReservations) Recent(_ context.Context, _ int) ([]model.ReservationSummary, error) {
	return []model.ReservationSummary{}, nil
}
func (f *fakeReservations) CountByStatus(_ context.Context) (map[model.ReservationStatus]int, error) {
	counts := make(map[model.ReservationStatus]int)
	for _, r := range f.items {
		counts[r.Status]++
	}
	return counts, nil
}

type fakeEquipment struct {
	prices map[uint64]int64
}

func (f *fakeEquipment) List(_ context.Context) ([]model.Equipment, error) { return nil, nil }
func (f *fakeEquipment) PricesByIDsTx(_ context.Context, _ *sql.Tx, ids []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64)
	for _, id := range ids {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakePayments struct {
	completed map[uint64]model.Payment
	created   []model.Payment
	refunded  []uint64
	createErr error
	nextID    uint64
}

func newFakePayments() *fakePayments {
	return &fakePayments{completed: make(map[uint64]model.Payment)}
}

func (f *fakePayments) CreateTx(_ context.Context, _ *sql.Tx, p *model.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	f.created = append(f.created, *p)
	f.completed[p.ReservationID] = *p
	return nil
}
func (f *fakePayments) CompletedByReservationTx(_ context.Context, _ *sql.Tx, resID uint64) (model.Payment, error) {
	p, ok := f.completed[resID]
	if !ok {
		return model.Payment{}, sql.ErrNoRows
	}
	return p, nil
}
func (f *fakePayments) MarkRefundedTx(_ context.Context, _ *sql.Tx, paymentID uint64) error {
	f.refunded = append(f.refunded, paymentID)
	for resID, p := range f.completed {
		if p.ID == paymentID {
			delete(f.completed, resID)
		}
	}
	return nil
}
func (f *fakePayments) ListByUser(_ context.Context, _ uint64) ([]model.PaymentDetail, error) {
	return nil, nil
}
func (f *fakePayments) ListAll(_ context.Context) ([]model.PaymentDetail, error) { return nil, nil }
func (f *fakePayments) TotalByStatus(_ context.Context, _ model.PaymentStatus) (int64, error) {
	return 0, nil
}

type fakeBalances struct {
	bal     model.Balance
	debits  []int64
	credits []int64
	topups  []int64
}

func (f *fakeBalances) Get(_ context.Context, _ uint64) (model.Balance, error) { return f.bal, nil }
func (f *fakeBalances) GetForUpdateTx(_ context.Context, _ *sql.Tx, _ uint64) (model.Balance, error) {
	return f.bal, nil
}
func (f *fakeBalances) DebitSystemTx(_ context.Context, _ *sql.Tx, _ uint64, amount int64) error {
	f.bal.SystemCredits -= amount
	f.debits = append(f.debits, amount)
	return nil
}
func (f *fakeBalances) CreditSystemTx(_ context.Context, _ *sql.Tx, _ uint64, amount int64) error {
	f.bal.SystemCredits += amount
	f.credits = append(f.credits, amount)
	return nil
}
func (f *fakeBalances) CreditSystem(_ context.Context, _ uint64, amount int64) error {
	f.bal.SystemCredits += amount
	f.credits = append(f.credits, amount)
	return nil
}
func (f *fakeBalances) MoveBankToSystemTx(_ context.Context, _ *sql.Tx, _ uint64, amount int64) error {
	f.bal.BankCredits -= amount
	f.bal.SystemCredits += amount
	return nil
}
func (f *fakeBalances) AppendTopUpTx(_ context.Context, _ *sql.Tx, _ uint64, _ string, amount int64) error {
	f.topups = append(f.topups, amount)
	return nil
}
func (f *fakeBalances) TopUpsByUser(_ context.Context, _ uint64) ([]model.TopUpTransaction, error) {
	return nil, nil
}

type fakeRules struct{ max int }

func (f *fakeRules) MaxActive(_ context.Context) (int, error) { return f.max, nil }
func (f *fakeRules) SetMaxActive(_ context.Context, n int) error {
	f.max = n
	return nil
}

type fakeAudit struct {
	roomActions []string
}

func (f *fakeAudit) RecordRoomAction(_ context.Context, _ uint64, action string) error {
	f.roomActions = append(f.roomActions, action)
	return nil
}
func (f *fakeAudit) RecordUserAction(_ context.Context, _ uint64, _, _ string) error { return nil }
func (f *fakeAudit) RoomActions(_ context.Context) ([]model.RoomAction, error)       { return nil, nil }
func (f *fakeAudit) UserActions(_ context.Context) ([]model.UserAction, error)       { return nil, nil }

// ----- fixture -----

type fixture struct {
	svc          *Service
	mock         sqlmock.Sqlmock
	rooms        *fakeRooms
	reservations *fakeReservations
	equipment    *fakeEquipment
	payments     *fakePayments
	balances     *fakeBalances
	rules        *fakeRules
	audit        *fakeAudit
	events       []queue.ReservationEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		mock:         mock,
		rooms:        &fakeRooms{rooms: map[uint64]model.Room{}, nextID: 10},
		reservations: newFakeReservations(),
		equipment:    &fakeEquipment{prices: map[uint64]int64{}},
		payments:     newFakePayments(),
		balances:     &fakeBalances{},
		rules:        &fakeRules{max: model.DefaultMaxActive},
		audit:        &fakeAudit{},
	}
	f.svc = NewService(db, f.rooms, f.reservations, f.equipment, f.payments, f.balances, f.rules, f.audit)
	f.svc.Publish = func(_ context.Context, ev queue.ReservationEvent) {
		f.events = append(f.events, ev)
	}
	return f
}

func (f *fixture) addRoom(id uint64, price int64, status model.RoomStatus) {
	f.rooms.rooms[id] = model.Room{ID: id, Name: "Study Room", Capacity: 6, PricePerHour: price, Status: status}
}

func (f *fixture) addReservation(id, userID, roomID uint64, status model.ReservationStatus) {
	f.reservations.items[id] = model.Reservation{
		ID: id, UserID: userID, RoomID: roomID,
		Date: "2026-09-10", StartSlot: 2, EndSlot: 4, Headcount: 2, Status: status,
	}
	if f.reservations.nextID < id {
		f.reservations.nextID = id
	}
}

func validCreate() CreateInput {
	return CreateInput{RoomID: 1, Date: "2026-09-10", StartSlot: 2, EndSlot: 4, Headcount: 2}
}

// ----- create -----

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.equipment.prices[7] = 15
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	in := validCreate()
	in.EquipmentIDs = []uint64{7}
	res, quote, err := f.svc.CreateReservation(context.Background(), 42, in)
	require.NoError(t, err)

	assert.Equal(t, model.ReservationPending, res.Status)
	assert.Equal(t, uint64(42), res.UserID)
	assert.Equal(t, 2, quote.Hours)
	assert.Equal(t, int64(20), quote.RoomCost)
	assert.Equal(t, int64(15), quote.EquipmentCost)
	assert.Equal(t, int64(35), quote.Total)
	assert.Equal(t, []uint64{7}, f.reservations.equipment[res.ID])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateReservationQuotaExceeded(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.reservations.activeCount = model.DefaultMaxActive
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, _, err := f.svc.CreateReservation(context.Background(), 42, validCreate())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateReservationQuotaWinsOverBadDate(t *testing.T) {
	// When both the quota and the date are bad, the quota error is
	// reported; precondition order is fixed.
	f := newFixture(t)
	f.reservations.activeCount = model.DefaultMaxActive
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	in := validCreate()
	in.Date = "garbage"
	_, _, err := f.svc.CreateReservation(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCreateReservationInvalidDate(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	in := validCreate()
	in.Date = "2026-13-40"
	_, _, err := f.svc.CreateReservation(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCreateReservationInvalidRange(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	in := validCreate()
	in.StartSlot, in.EndSlot = 5, 5
	_, _, err := f.svc.CreateReservation(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestCreateReservationRoomMissing(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, _, err := f.svc.CreateReservation(context.Background(), 42, validCreate())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateReservationMaintenanceRoom(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomMaintenance)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, _, err := f.svc.CreateReservation(context.Background(), 42, validCreate())
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateReservationOverlap(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.reservations.overlap = true
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, _, err := f.svc.CreateReservation(context.Background(), 42, validCreate())
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateReservationUnknownEquipment(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	in := validCreate()
	in.EquipmentIDs = []uint64{99}
	_, _, err := f.svc.CreateReservation(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrUnknownEquipment)
}

// ----- modify -----

func TestModifyReservationExcludesOwnRow(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	newEnd := 6
	err := f.svc.ModifyReservation(context.Background(), 42, 5, Changes{EndSlot: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), f.reservations.lastExcludeID)
	assert.Equal(t, 6, f.reservations.items[5].EndSlot)
}

func TestModifyReservationForbidden(t *testing.T) {
	f := newFixture(t)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	err := f.svc.ModifyReservation(context.Background(), 7, 5, Changes{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestModifyCancelledReservation(t *testing.T) {
	f := newFixture(t)
	f.addReservation(5, 42, 1, model.ReservationCancelled)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	err := f.svc.ModifyReservation(context.Background(), 42, 5, Changes{})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

// ----- pay -----

func TestPayReservationSystemBalance(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.balances.bal = model.Balance{UserID: 42, SystemCredits: 100}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	pay, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodSystemBalance})
	require.NoError(t, err)

	assert.Equal(t, int64(20), pay.Amount) // 2 slots at 10/hr
	assert.True(t, strings.HasPrefix(pay.TransactionID, "TXN-"))
	assert.Equal(t, model.PaymentCompleted, pay.Status)
	assert.Equal(t, []int64{20}, f.balances.debits)
	assert.Equal(t, int64(80), f.balances.bal.SystemCredits)
	assert.Equal(t, model.ReservationConfirmed, f.reservations.items[5].Status)
	require.Len(t, f.events, 1)
	assert.Equal(t, queue.KindConfirmed, f.events[0].Kind)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayReservationInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.balances.bal = model.Balance{UserID: 42, SystemCredits: 5}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodSystemBalance})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, f.payments.created)
	assert.Empty(t, f.balances.debits)
	assert.Equal(t, model.ReservationPending, f.reservations.items[5].Status)
	assert.Empty(t, f.events)
}

func TestPayReservationExternalMethod(t *testing.T) {
	// External methods never touch the system balance and complete as
	// submitted.
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	pay, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{
		Method:        model.MethodOnlineBanking,
		BankName:      "First Bank",
		AccountNumber: "12345678",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, pay.Status)
	assert.Equal(t, "First Bank", pay.BankName)
	assert.Empty(t, f.balances.debits)
	assert.Equal(t, model.ReservationConfirmed, f.reservations.items[5].Status)
}

func TestPayReservationUnknownMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: "CASH"})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestPayReservationTwice(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.balances.bal = model.Balance{UserID: 42, SystemCredits: 100}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodSystemBalance})
	require.NoError(t, err)

	_, err = f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodSystemBalance})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Len(t, f.balances.debits, 1)
}

func TestPayReservationForbidden(t *testing.T) {
	f := newFixture(t)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayReservation(context.Background(), 7, 5, PayInput{Method: model.MethodSystemBalance})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPayReservationDuplicateTransactionID(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.balances.bal = model.Balance{UserID: 42, SystemCredits: 100}
	f.payments.createErr = repository.ErrDuplicateTransaction
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodSystemBalance})
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Empty(t, f.events)
}

// ----- cancel -----

func TestCancelPaidReservationRefundsOnce(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.balances.bal = model.Balance{UserID: 42, SystemCredits: 100}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodSystemBalance})
	require.NoError(t, err)
	require.Equal(t, int64(80), f.balances.bal.SystemCredits)

	refund, err := f.svc.CancelReservation(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(20), refund)
	assert.Equal(t, int64(100), f.balances.bal.SystemCredits)
	assert.Len(t, f.payments.refunded, 1)
	assert.Equal(t, model.ReservationCancelled, f.reservations.items[5].Status)

	// A second cancel must not refund again.
	_, err = f.svc.CancelReservation(context.Background(), 42, 5)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, int64(100), f.balances.bal.SystemCredits)
	assert.Len(t, f.payments.refunded, 1)
}

func TestCancelUnpaidReservation(t *testing.T) {
	f := newFixture(t)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	refund, err := f.svc.CancelReservation(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Zero(t, refund)
	assert.Equal(t, model.ReservationCancelled, f.reservations.items[5].Status)
	require.Len(t, f.events, 1)
	assert.Equal(t, queue.KindCancelled, f.events[0].Kind)
}

func TestCancelExternalPaymentRefundsSystemBalance(t *testing.T) {
	// Refunds always land on the system balance, regardless of how the
	// member originally paid.
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.PayReservation(context.Background(), 42, 5, PayInput{Method: model.MethodCreditCard})
	require.NoError(t, err)

	refund, err := f.svc.CancelReservation(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(20), refund)
	assert.Equal(t, int64(20), f.balances.bal.SystemCredits)
	assert.Equal(t, int64(0), f.balances.bal.BankCredits)
}

func TestCancelForbidden(t *testing.T) {
	f := newFixture(t)
	f.addReservation(5, 42, 1, model.ReservationPending)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CancelReservation(context.Background(), 7, 5)
	assert.ErrorIs(t, err, ErrForbidden)
}

// ----- top-up -----

func TestTopUp(t *testing.T) {
	f := newFixture(t)
	f.balances.bal = model.Balance{UserID: 42, SystemCredits: 10, BankCredits: 1000}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	bal, err := f.svc.TopUp(context.Background(), 42, 300, "First Bank")
	require.NoError(t, err)
	assert.Equal(t, int64(310), bal.SystemCredits)
	assert.Equal(t, int64(700), bal.BankCredits)
	assert.Equal(t, []int64{300}, f.balances.topups)
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.TopUp(context.Background(), 42, 0, "First Bank")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.TopUp(context.Background(), 42, -5, "First Bank")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTopUpInsufficientBankFunds(t *testing.T) {
	f := newFixture(t)
	f.balances.bal = model.Balance{UserID: 42, BankCredits: 100}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.TopUp(context.Background(), 42, 200, "First Bank")
	assert.ErrorIs(t, err, ErrInsufficientExternalFunds)
	assert.Empty(t, f.balances.topups)
}

// ----- listings and admin -----

func TestListAvailableRoomsAnnotatesFreeRange(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.addRoom(2, 10, model.RoomMaintenance)

	views, err := f.svc.ListAvailableRooms(context.Background(), "2026-09-10", 2, 4, true)
	require.NoError(t, err)
	require.Len(t, views, 1) // maintenance room hidden
	require.NotNil(t, views[0].Free)
	assert.True(t, *views[0].Free)

	f.reservations.overlap = true
	views, err = f.svc.ListAvailableRooms(context.Background(), "2026-09-10", 2, 4, true)
	require.NoError(t, err)
	require.NotNil(t, views[0].Free)
	assert.False(t, *views[0].Free)
}

func TestListAvailableRoomsRejectsBadRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListAvailableRooms(context.Background(), "2026-09-10", 4, 2, true)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = f.svc.ListAvailableRooms(context.Background(), "bad", 2, 4, true)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSetBookingRule(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.SetBookingRule(context.Background(), 5))
	rule, err := f.svc.BookingRule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, rule.MaxActive)

	assert.ErrorIs(t, f.svc.SetBookingRule(context.Background(), 0), ErrInvalidAmount)
}

func TestQuotaFollowsRule(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)
	f.rules.max = 5
	f.reservations.activeCount = 4
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, _, err := f.svc.CreateReservation(context.Background(), 42, validCreate())
	assert.NoError(t, err)
}

func TestUpdateRoomCapacityRecordsAudit(t *testing.T) {
	f := newFixture(t)
	f.addRoom(1, 10, model.RoomAvailable)

	require.NoError(t, f.svc.UpdateRoomCapacity(context.Background(), 1, 12))
	assert.Equal(t, 12, f.rooms.rooms[1].Capacity)
	require.Len(t, f.audit.roomActions, 1)
	assert.Equal(t, "Capacity updated: 6 -> 12", f.audit.roomActions[0])
}

func TestCreditMember(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.CreditMember(context.Background(), 42, 50))
	assert.Equal(t, int64(50), f.balances.bal.SystemCredits)

	assert.ErrorIs(t, f.svc.CreditMember(context.Background(), 42, 0), ErrInvalidAmount)
}
