package model

import "time"

// RoomStatus is the closed set of states a room can be in. Rooms under
// maintenance are hidden from browsing and cannot be reserved.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

// Room represents a bookable library room as stored in the `rooms`
// table. Reservations reference rooms but do not own them.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – room name shown to members.
//  Capacity     – maximum head-count.
//  PricePerHour – price in credits for one slot-hour.
//  Status       – AVAILABLE or MAINTENANCE.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Room struct {
	ID           uint64     // rooms.id
	Name         string     // rooms.name
	Capacity     int        // rooms.capacity
	PricePerHour int64      // rooms.price_per_hour
	Status       RoomStatus // rooms.status
	CreatedAt    time.Time  // rooms.created_at
	UpdatedAt    time.Time  // rooms.updated_at
}
