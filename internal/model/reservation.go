package model

import "time"

// ReservationStatus is the closed set of reservation lifecycle states.
// PENDING and CONFIRMED reservations block overlapping bookings and
// count toward the per-user quota; CANCELLED is terminal.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation records a member's booking of a room for a slot range on
// a calendar day. Slot indices refer to the fixed grid in the booking
// package; the invariant EndSlot > StartSlot always holds for persisted
// rows.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – member who made the reservation.
//  RoomID    – room being reserved.
//  Date      – calendar day in YYYY-MM-DD form.
//  StartSlot – index of the first occupied slot.
//  EndSlot   – index one past the last occupied slot (end-exclusive).
//  Headcount – number of people attending.
//  Status    – PENDING, CONFIRMED or CANCELLED.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64            // reservations.id
	UserID    uint64            // reservations.user_id
	RoomID    uint64            // reservations.room_id
	Date      string            // reservations.res_date
	StartSlot int               // reservations.start_slot
	EndSlot   int               // reservations.end_slot
	Headcount int               // reservations.headcount
	Status    ReservationStatus // reservations.status
	CreatedAt time.Time         // reservations.created_at
	UpdatedAt time.Time         // reservations.updated_at
}

// ReservationSummary is the read model returned by history and admin
// listings. It joins the room name (and, for admin views, the member)
// onto the reservation row.
type ReservationSummary struct {
	ID        uint64            `json:"id"`
	UserID    uint64            `json:"user_id"`
	UserName  string            `json:"user_name,omitempty"`
	RoomID    uint64            `json:"room_id"`
	RoomName  string            `json:"room_name"`
	Date      string            `json:"date"`
	StartSlot int               `json:"start_slot"`
	EndSlot   int               `json:"end_slot"`
	Headcount int               `json:"headcount"`
	Status    ReservationStatus `json:"status"`
	Equipment []Equipment       `json:"equipment,omitempty"`
}
