package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/libroom/reserve/internal/model"
	"github.com/libroom/reserve/internal/queue"
	"github.com/libroom/reserve/internal/repository"
	"github.com/libroom/reserve/internal/utils"
)

// Service is the reservation ledger. It owns the transaction
// boundaries: every operation that touches more than one entity
// (reservation + equipment links, or balance + payment + reservation
// status) runs inside a single *sql.Tx so partial application cannot
// happen. Reads that touch a single entity go straight to the stores.
type Service struct {
	db           *sql.DB
	rooms        RoomStore
	reservations ReservationStore
	equipment    EquipmentStore
	payments     PaymentStore
	balances     BalanceStore
	rules        RuleStore
	audit        AuditStore

	// Publish, when set, receives an event after a confirming or
	// cancelling transaction commits. Delivery is best effort; the
	// booking flow never depends on it.
	Publish func(context.Context, queue.ReservationEvent)
}

// NewService constructs the booking service. All stores must be non-nil.
func NewService(db *sql.DB, rooms RoomStore, reservations ReservationStore, equipment EquipmentStore, payments PaymentStore, balances BalanceStore, rules RuleStore, audit AuditStore) *Service {
	if db == nil || rooms == nil || reservations == nil || equipment == nil || payments == nil || balances == nil || rules == nil || audit == nil {
		panic("nil dependency passed to booking.NewService")
	}
	return &Service{
		db:           db,
		rooms:        rooms,
		reservations: reservations,
		equipment:    equipment,
		payments:     payments,
		balances:     balances,
		rules:        rules,
		audit:        audit,
	}
}

// CreateInput carries the parameters of a new reservation.
type CreateInput struct {
	RoomID       uint64
	Date         string
	StartSlot    int
	EndSlot      int
	Headcount    int
	EquipmentIDs []uint64
}

// Changes carries the optional fields of a reservation revision. Nil
// fields keep their current value.
type Changes struct {
	RoomID    *uint64
	Date      *string
	StartSlot *int
	EndSlot   *int
}

// PayInput carries the payment method and its opaque counterpart
// details. Bank and account fields are recorded verbatim for external
// methods and ignored for SYSTEM_BALANCE.
type PayInput struct {
	Method        model.PaymentMethod
	BankName      string
	AccountNumber string
	AccountHolder string
}

// RoomView is a room annotated with availability for a queried range.
type RoomView struct {
	ID           uint64           `json:"id"`
	Name         string           `json:"name"`
	Capacity     int              `json:"capacity"`
	PricePerHour int64            `json:"price_per_hour"`
	Status       model.RoomStatus `json:"status"`
	Free         *bool            `json:"free,omitempty"`
}

// DashboardStats aggregates the librarian dashboard numbers.
type DashboardStats struct {
	TotalRooms           int                             `json:"total_rooms"`
	AvailableRooms       int                             `json:"available_rooms"`
	MaintenanceRooms     int                             `json:"maintenance_rooms"`
	ReservationsByStatus map[model.ReservationStatus]int `json:"reservations_by_status"`
	TotalRevenue         int64                           `json:"total_revenue"`
	Refunded             int64                           `json:"refunded"`
	NetRevenue           int64                           `json:"net_revenue"`
	RecentBookings       []model.ReservationSummary      `json:"recent_bookings"`
}

// ListAvailableRooms returns rooms whose status is AVAILABLE. When
// withRange is true the date and slot range are validated and each room
// is annotated with whether it is free for that range under half-open
// overlap semantics.
func (s *Service) ListAvailableRooms(ctx context.Context, date string, startSlot, endSlot int, withRange bool) ([]RoomView, error) {
	if withRange {
		if !ValidDate(date) {
			return nil, ErrInvalidDate
		}
		if !ValidRange(startSlot, endSlot) {
			return nil, ErrInvalidTimeRange
		}
	}
	rooms, err := s.rooms.ListByStatus(ctx, model.RoomAvailable)
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		v := RoomView{ID: r.ID, Name: r.Name, Capacity: r.Capacity, PricePerHour: r.PricePerHour, Status: r.Status}
		if withRange {
			busy, err := s.reservations.HasOverlap(ctx, r.ID, date, startSlot, endSlot)
			if err != nil {
				return nil, err
			}
			free := !busy
			v.Free = &free
		}
		views = append(views, v)
	}
	return views, nil
}

// ListEquipment returns the equipment catalogue.
func (s *Service) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	return s.equipment.List(ctx)
}

// CreateReservation runs the create preconditions in order (quota,
// date, time range, room availability, equipment resolution) with the
// first failure winning, then persists the reservation and its
// equipment links as one transaction. The returned quote is the cost
// the member will be charged on payment.
func (s *Service) CreateReservation(ctx context.Context, userID uint64, in CreateInput) (*model.Reservation, Quote, error) {
	maxActive, err := s.rules.MaxActive(ctx)
	if err != nil {
		return nil, Quote{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, Quote{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	active, err := s.reservations.CountActiveByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, Quote{}, err
	}
	if active >= maxActive {
		return nil, Quote{}, ErrQuotaExceeded
	}
	if !ValidDate(in.Date) {
		return nil, Quote{}, ErrInvalidDate
	}
	if !ValidRange(in.StartSlot, in.EndSlot) {
		return nil, Quote{}, ErrInvalidTimeRange
	}

	// Locking the room row serialises concurrent creates for the same
	// room, so both cannot pass the overlap scan before either writes.
	room, err := s.rooms.GetForUpdateTx(ctx, tx, in.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Quote{}, ErrRoomNotFound
		}
		return nil, Quote{}, err
	}
	if room.Status != model.RoomAvailable {
		return nil, Quote{}, ErrRoomUnavailable
	}
	busy, err := s.reservations.HasOverlapTx(ctx, tx, in.RoomID, in.Date, in.StartSlot, in.EndSlot, 0)
	if err != nil {
		return nil, Quote{}, err
	}
	if busy {
		return nil, Quote{}, ErrRoomUnavailable
	}

	equipIDs := dedupe(in.EquipmentIDs)
	prices, err := s.equipment.PricesByIDsTx(ctx, tx, equipIDs)
	if err != nil {
		return nil, Quote{}, err
	}
	if len(prices) != len(equipIDs) {
		return nil, Quote{}, ErrUnknownEquipment
	}

	res := &model.Reservation{
		UserID:    userID,
		RoomID:    in.RoomID,
		Date:      in.Date,
		StartSlot: in.StartSlot,
		EndSlot:   in.EndSlot,
		Headcount: in.Headcount,
		Status:    model.ReservationPending,
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, Quote{}, err
	}
	if err := s.reservations.AttachEquipmentTx(ctx, tx, res.ID, equipIDs); err != nil {
		return nil, Quote{}, err
	}
	if err := tx.Commit(); err != nil {
		return nil, Quote{}, err
	}
	committed = true

	quote, err := ComputeCost(room.PricePerHour, in.StartSlot, in.EndSlot, priceList(prices, equipIDs))
	if err != nil {
		return nil, Quote{}, err
	}
	return res, quote, nil
}

// ModifyReservation lets the owning member move a reservation to a new
// room, date or slot range. The time range and availability are
// re-validated with the reservation's own row excluded from the overlap
// scan; the quota is not re-checked and payment state is untouched.
func (s *Service) ModifyReservation(ctx context.Context, userID, resID uint64, ch Changes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReservationNotFound
		}
		return err
	}
	if res.UserID != userID {
		return ErrForbidden
	}
	if res.Status == model.ReservationCancelled {
		return ErrAlreadyCancelled
	}

	roomID, date, start, end := res.RoomID, res.Date, res.StartSlot, res.EndSlot
	if ch.RoomID != nil {
		roomID = *ch.RoomID
	}
	if ch.Date != nil {
		date = *ch.Date
	}
	if ch.StartSlot != nil {
		start = *ch.StartSlot
	}
	if ch.EndSlot != nil {
		end = *ch.EndSlot
	}
	if !ValidDate(date) {
		return ErrInvalidDate
	}
	if !ValidRange(start, end) {
		return ErrInvalidTimeRange
	}
	room, err := s.rooms.GetForUpdateTx(ctx, tx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if room.Status != model.RoomAvailable {
		return ErrRoomUnavailable
	}
	busy, err := s.reservations.HasOverlapTx(ctx, tx, roomID, date, start, end, resID)
	if err != nil {
		return err
	}
	if busy {
		return ErrRoomUnavailable
	}
	if err := s.reservations.UpdateScheduleTx(ctx, tx, resID, roomID, date, start, end); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// PayReservation settles a PENDING reservation. For SYSTEM_BALANCE the
// member's system credits are debited; external methods are recorded
// verbatim and complete on submission, since the gateway is simulated.
// The payment row, the debit and the PENDING -> CONFIRMED transition
// commit together or not at all.
func (s *Service) PayReservation(ctx context.Context, userID, resID uint64, in PayInput) (*model.Payment, error) {
	switch in.Method {
	case model.MethodSystemBalance, model.MethodOnlineBanking, model.MethodCreditCard:
	default:
		return nil, ErrUnknownMethod
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrForbidden
	}
	if res.Status == model.ReservationCancelled {
		return nil, ErrAlreadyCancelled
	}
	if res.Status == model.ReservationConfirmed {
		return nil, ErrAlreadyPaid
	}
	if _, err := s.payments.CompletedByReservationTx(ctx, tx, resID); err == nil {
		return nil, ErrAlreadyPaid
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	room, err := s.rooms.GetTx(ctx, tx, res.RoomID)
	if err != nil {
		return nil, err
	}
	equipIDs, err := s.reservations.EquipmentIDsTx(ctx, tx, resID)
	if err != nil {
		return nil, err
	}
	prices, err := s.equipment.PricesByIDsTx(ctx, tx, equipIDs)
	if err != nil {
		return nil, err
	}
	if len(prices) != len(equipIDs) {
		return nil, ErrIntegrity
	}
	quote, err := ComputeCost(room.PricePerHour, res.StartSlot, res.EndSlot, priceList(prices, equipIDs))
	if err != nil {
		return nil, err
	}

	if in.Method == model.MethodSystemBalance {
		bal, err := s.balances.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		if bal.SystemCredits < quote.Total {
			return nil, ErrInsufficientBalance
		}
		if err := s.balances.DebitSystemTx(ctx, tx, userID, quote.Total); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	pay := &model.Payment{
		ReservationID: resID,
		UserID:        userID,
		Amount:        quote.Total,
		Method:        in.Method,
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		AccountHolder: in.AccountHolder,
		TransactionID: utils.NewTransactionID(),
		Status:        model.PaymentCompleted,
		PaidAt:        now,
	}
	if err := s.payments.CreateTx(ctx, tx, pay); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransaction) {
			return nil, ErrIntegrity
		}
		return nil, err
	}
	if err := s.reservations.UpdateStatusTx(ctx, tx, resID, model.ReservationConfirmed); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.publish(ctx, queue.ReservationEvent{
		Kind:          queue.KindConfirmed,
		ReservationID: resID,
		UserID:        userID,
		RoomID:        room.ID,
		RoomName:      room.Name,
		Date:          res.Date,
		StartSlot:     res.StartSlot,
		EndSlot:       res.EndSlot,
		Amount:        quote.Total,
		TransactionID: pay.TransactionID,
		OccurredAt:    now.Format(time.RFC3339),
	})
	return pay, nil
}

// CancelReservation moves a PENDING or CONFIRMED reservation to
// CANCELLED. When a completed payment exists it is marked REFUNDED and
// its amount credited back to the system balance exactly once; the
// external balance is never touched regardless of the original method.
// A repeated cancel fails ErrAlreadyCancelled without a second credit.
func (s *Service) CancelReservation(ctx context.Context, userID, resID uint64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetForUpdateTx(ctx, tx, resID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrReservationNotFound
		}
		return 0, err
	}
	if res.UserID != userID {
		return 0, ErrForbidden
	}
	if res.Status == model.ReservationCancelled {
		return 0, ErrAlreadyCancelled
	}

	var refund int64
	pay, err := s.payments.CompletedByReservationTx(ctx, tx, resID)
	switch {
	case err == nil:
		if err := s.payments.MarkRefundedTx(ctx, tx, pay.ID); err != nil {
			return 0, err
		}
		if err := s.balances.CreditSystemTx(ctx, tx, userID, pay.Amount); err != nil {
			return 0, err
		}
		refund = pay.Amount
	case errors.Is(err, sql.ErrNoRows):
		// Nothing paid yet, nothing to refund.
	default:
		return 0, err
	}

	if err := s.reservations.UpdateStatusTx(ctx, tx, resID, model.ReservationCancelled); err != nil {
		return 0, err
	}
	if err := s.reservations.DetachEquipmentTx(ctx, tx, resID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	s.publish(ctx, queue.ReservationEvent{
		Kind:          queue.KindCancelled,
		ReservationID: resID,
		UserID:        userID,
		RoomID:        res.RoomID,
		Date:          res.Date,
		StartSlot:     res.StartSlot,
		EndSlot:       res.EndSlot,
		Amount:        refund,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return refund, nil
}

// TopUp moves amount from the member's external bank balance into the
// system balance and appends an immutable history entry, all in one
// transaction. The bank name is recorded verbatim.
func (s *Service) TopUp(ctx context.Context, userID uint64, amount int64, bankName string) (model.Balance, error) {
	if amount <= 0 {
		return model.Balance{}, ErrInvalidAmount
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Balance{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bal, err := s.balances.GetForUpdateTx(ctx, tx, userID)
	if err != nil {
		return model.Balance{}, err
	}
	if bal.BankCredits < amount {
		return model.Balance{}, ErrInsufficientExternalFunds
	}
	if err := s.balances.MoveBankToSystemTx(ctx, tx, userID, amount); err != nil {
		return model.Balance{}, err
	}
	if err := s.balances.AppendTopUpTx(ctx, tx, userID, bankName, amount); err != nil {
		return model.Balance{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Balance{}, err
	}
	committed = true

	bal.SystemCredits += amount
	bal.BankCredits -= amount
	return bal, nil
}

// Balance returns both ledgers for a member.
func (s *Service) Balance(ctx context.Context, userID uint64) (model.Balance, error) {
	return s.balances.Get(ctx, userID)
}

// UserHistory returns the member's reservations, newest first.
func (s *Service) UserHistory(ctx context.Context, userID uint64) ([]model.ReservationSummary, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// PaymentHistory returns the member's payments, newest first.
func (s *Service) PaymentHistory(ctx context.Context, userID uint64) ([]model.PaymentDetail, error) {
	return s.payments.ListByUser(ctx, userID)
}

// TopUpHistory returns the member's top-up transactions.
func (s *Service) TopUpHistory(ctx context.Context, userID uint64) ([]model.TopUpTransaction, error) {
	return s.balances.TopUpsByUser(ctx, userID)
}

// ----- librarian operations -----

// BookingRule returns the current quota ceiling.
func (s *Service) BookingRule(ctx context.Context) (model.BookingRule, error) {
	n, err := s.rules.MaxActive(ctx)
	if err != nil {
		return model.BookingRule{}, err
	}
	return model.BookingRule{MaxActive: n}, nil
}

// SetBookingRule updates the quota ceiling.
func (s *Service) SetBookingRule(ctx context.Context, maxActive int) error {
	if maxActive < 1 {
		return ErrInvalidAmount
	}
	return s.rules.SetMaxActive(ctx, maxActive)
}

// AddRoom creates a room in AVAILABLE status.
func (s *Service) AddRoom(ctx context.Context, name string, capacity int, pricePerHour int64) (*model.Room, error) {
	if capacity < 1 || pricePerHour < 0 {
		return nil, ErrInvalidAmount
	}
	room := &model.Room{Name: name, Capacity: capacity, PricePerHour: pricePerHour, Status: model.RoomAvailable}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	_ = s.audit.RecordRoomAction(ctx, room.ID, "Room added")
	return room, nil
}

// UpdateRoomCapacity changes a room's capacity and records the change.
func (s *Service) UpdateRoomCapacity(ctx context.Context, roomID uint64, capacity int) error {
	if capacity < 1 {
		return ErrInvalidAmount
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if err := s.rooms.UpdateCapacity(ctx, roomID, capacity); err != nil {
		return err
	}
	_ = s.audit.RecordRoomAction(ctx, roomID, fmt.Sprintf("Capacity updated: %d -> %d", room.Capacity, capacity))
	return nil
}

// SetRoomStatus flips a room between AVAILABLE and MAINTENANCE.
func (s *Service) SetRoomStatus(ctx context.Context, roomID uint64, status model.RoomStatus) error {
	if status != model.RoomAvailable && status != model.RoomMaintenance {
		return ErrInvalidAmount
	}
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if err := s.rooms.UpdateStatus(ctx, roomID, status); err != nil {
		return err
	}
	_ = s.audit.RecordRoomAction(ctx, roomID, "Status set to "+string(status))
	return nil
}

// DeleteRoom removes a room together with its reservations and their
// equipment links. Payments survive as history.
func (s *Service) DeleteRoom(ctx context.Context, roomID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := s.rooms.GetForUpdateTx(ctx, tx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if err := s.rooms.DeleteCascadeTx(ctx, tx, roomID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	_ = s.audit.RecordRoomAction(ctx, roomID, "Room deleted")
	return nil
}

// CreditMember grants system credits to a member (librarian action).
func (s *Service) CreditMember(ctx context.Context, userID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.balances.CreditSystem(ctx, userID, amount)
}

// DashboardStats assembles the librarian dashboard aggregates.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	roomCounts, err := s.rooms.CountByStatus(ctx)
	if err != nil {
		return stats, err
	}
	stats.AvailableRooms = roomCounts[model.RoomAvailable]
	stats.MaintenanceRooms = roomCounts[model.RoomMaintenance]
	stats.TotalRooms = stats.AvailableRooms + stats.MaintenanceRooms

	stats.ReservationsByStatus, err = s.reservations.CountByStatus(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalRevenue, err = s.payments.TotalByStatus(ctx, model.PaymentCompleted)
	if err != nil {
		return stats, err
	}
	stats.Refunded, err = s.payments.TotalByStatus(ctx, model.PaymentRefunded)
	if err != nil {
		return stats, err
	}
	stats.NetRevenue = stats.TotalRevenue - stats.Refunded

	stats.RecentBookings, err = s.reservations.Recent(ctx, 5)
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// AllReservations returns every reservation with member and room
// context for the librarian view.
func (s *Service) AllReservations(ctx context.Context) ([]model.ReservationSummary, error) {
	return s.reservations.ListAll(ctx)
}

// AllPayments returns every payment record for the librarian view.
func (s *Service) AllPayments(ctx context.Context) ([]model.PaymentDetail, error) {
	return s.payments.ListAll(ctx)
}

// RoomActions returns the room audit trail for the librarian view.
func (s *Service) RoomActions(ctx context.Context) ([]model.RoomAction, error) {
	return s.audit.RoomActions(ctx)
}

// UserActions returns the account audit trail for the librarian view.
func (s *Service) UserActions(ctx context.Context) ([]model.UserAction, error) {
	return s.audit.UserActions(ctx)
}

func (s *Service) publish(ctx context.Context, ev queue.ReservationEvent) {
	if s.Publish != nil {
		s.Publish(ctx, ev)
	}
}

func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func priceList(prices map[uint64]int64, ids []uint64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, prices[id])
	}
	return out
}
