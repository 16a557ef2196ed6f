// Sentinel errors surfaced by the booking service. Handlers translate
// these into HTTP statuses with errors.Is; none of them should ever
// escape to a caller as an untyped failure.
package booking

import "errors"

var (
	// ErrInvalidDate is returned when the supplied date does not parse
	// as a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTimeRange is returned when the end slot is not strictly
	// after the start slot or either index is off the grid.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrRoomUnavailable is returned when the room is under maintenance
	// or an active reservation overlaps the requested range.
	ErrRoomUnavailable = errors.New("room unavailable")

	// ErrQuotaExceeded is returned when the member already holds the
	// maximum number of active reservations.
	ErrQuotaExceeded = errors.New("reservation quota exceeded")

	// ErrUnknownEquipment is returned when any submitted equipment id
	// does not resolve; the whole request is rejected.
	ErrUnknownEquipment = errors.New("unknown equipment")

	// ErrInsufficientBalance is returned when a system-balance payment
	// exceeds the member's system credits.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientExternalFunds is returned when a top-up exceeds the
	// member's external bank balance.
	ErrInsufficientExternalFunds = errors.New("insufficient external funds")

	// ErrInvalidAmount is returned for zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAlreadyPaid is returned when paying a reservation that already
	// has a completed payment.
	ErrAlreadyPaid = errors.New("reservation already paid")

	// ErrAlreadyCancelled is returned when cancelling a reservation that
	// is already CANCELLED. The refund is never applied twice.
	ErrAlreadyCancelled = errors.New("reservation already cancelled")

	// ErrReservationNotFound is returned when the reservation id does not
	// resolve.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrRoomNotFound is returned when the room id does not resolve.
	ErrRoomNotFound = errors.New("room not found")

	// ErrForbidden is returned when a member acts on a reservation they
	// do not own.
	ErrForbidden = errors.New("forbidden")

	// ErrUnknownMethod is returned for payment methods outside the
	// accepted set.
	ErrUnknownMethod = errors.New("unknown payment method")

	// ErrIntegrity signals a fatal consistency violation such as a
	// transaction-id collision. It is never expected in normal operation.
	ErrIntegrity = errors.New("integrity error")
)
