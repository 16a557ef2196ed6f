package model

// DefaultMaxActive applies when no booking_rules row has been written yet.
const DefaultMaxActive = 2

// BookingRule is the process-wide singleton row governing how many
// reservations a member may hold simultaneously in PENDING or
// CONFIRMED state. It is fetched explicitly per booking attempt rather
// than cached as a hidden global.
type BookingRule struct {
	MaxActive int `json:"max_active"` // booking_rules.max_active
}
