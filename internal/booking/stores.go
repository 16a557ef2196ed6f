package booking

import (
	"context"
	"database/sql"

	"github.com/libroom/reserve/internal/model"
)

// Store interfaces consumed by Service. The Tx variants run inside a
// caller-owned transaction so that every multi-entity mutation commits
// or rolls back as one unit; implementations live in
// internal/repository.

// RoomStore provides room persistence.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error)
	// GetForUpdateTx locks the room row, serialising concurrent booking
	// attempts for the same room.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	ListByStatus(ctx context.Context, status model.RoomStatus) ([]model.Room, error)
	Create(ctx context.Context, room *model.Room) error
	UpdateCapacity(ctx context.Context, id uint64, capacity int) error
	UpdateStatus(ctx context.Context, id uint64, status model.RoomStatus) error
	// DeleteCascadeTx removes the room together with its reservations and
	// their equipment links. Payments are kept as history.
	DeleteCascadeTx(ctx context.Context, tx *sql.Tx, id uint64) error
	CountByStatus(ctx context.Context) (map[model.RoomStatus]int, error)
}

// ReservationStore provides reservation persistence, including the
// overlap scan at the heart of the availability check.
type ReservationStore interface {
	CountActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error)
	// HasOverlapTx reports whether any PENDING or CONFIRMED reservation
	// for the room and date intersects [startSlot, endSlot) under
	// half-open semantics. excludeID > 0 skips that reservation's own
	// row when revising it. Matching rows are locked.
	HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, date string, startSlot, endSlot int, excludeID uint64) (bool, error)
	HasOverlap(ctx context.Context, roomID uint64, date string, startSlot, endSlot int) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error)
	UpdateScheduleTx(ctx context.Context, tx *sql.Tx, id, roomID uint64, date string, startSlot, endSlot int) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus) error
	AttachEquipmentTx(ctx context.Context, tx *sql.Tx, resID uint64, equipmentIDs []uint64) error
	DetachEquipmentTx(ctx context.Context, tx *sql.Tx, resID uint64) error
	EquipmentIDsTx(ctx context.Context, tx *sql.Tx, resID uint64) ([]uint64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.ReservationSummary, error)
	ListAll(ctx context.Context) ([]model.ReservationSummary, error)
	Recent(ctx context.Context, limit int) ([]model.ReservationSummary, error)
	CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error)
}

// EquipmentStore resolves equipment items and prices.
type EquipmentStore interface {
	List(ctx context.Context) ([]model.Equipment, error)
	// PricesByIDsTx returns a price per id; ids absent from the result do
	// not exist and the caller must reject the whole request.
	PricesByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]int64, error)
}

// PaymentStore provides payment persistence.
type PaymentStore interface {
	// CreateTx inserts a COMPLETED payment. A transaction-id collision
	// surfaces as repository.ErrDuplicateTransaction.
	CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	// CompletedByReservationTx returns the active (COMPLETED) payment for
	// a reservation, or sql.ErrNoRows when there is none.
	CompletedByReservationTx(ctx context.Context, tx *sql.Tx, resID uint64) (model.Payment, error)
	MarkRefundedTx(ctx context.Context, tx *sql.Tx, paymentID uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.PaymentDetail, error)
	ListAll(ctx context.Context) ([]model.PaymentDetail, error)
	TotalByStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
}

// BalanceStore provides the two per-user ledgers. Debits never drive a
// balance negative; implementations guard with conditional updates.
type BalanceStore interface {
	Get(ctx context.Context, userID uint64) (model.Balance, error)
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Balance, error)
	DebitSystemTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error
	CreditSystemTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error
	CreditSystem(ctx context.Context, userID uint64, amount int64) error
	// MoveBankToSystemTx transfers amount from the external bank balance
	// into the system balance as one step.
	MoveBankToSystemTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error
	AppendTopUpTx(ctx context.Context, tx *sql.Tx, userID uint64, bankName string, amount int64) error
	TopUpsByUser(ctx context.Context, userID uint64) ([]model.TopUpTransaction, error)
}

// RuleStore reads and writes the booking-rule singleton.
type RuleStore interface {
	MaxActive(ctx context.Context) (int, error)
	SetMaxActive(ctx context.Context, n int) error
}

// AuditStore appends administrative and account audit entries.
type AuditStore interface {
	RecordRoomAction(ctx context.Context, roomID uint64, action string) error
	RecordUserAction(ctx context.Context, userID uint64, actionType, details string) error
	RoomActions(ctx context.Context) ([]model.RoomAction, error)
	UserActions(ctx context.Context) ([]model.UserAction, error)
}
