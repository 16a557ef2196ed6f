// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published to the reservation events queue.
const (
	KindConfirmed = "confirmed"
	KindCancelled = "cancelled"
)

// ReservationEvent is published when a reservation is confirmed by a
// completed payment or cancelled. It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ReservationEvent struct {
	Kind          string `json:"kind"`
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	Date          string `json:"date"`
	StartSlot     int    `json:"start_slot"`
	EndSlot       int    `json:"end_slot"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
