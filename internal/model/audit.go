package model

import "time"

// RoomAction is an audit entry describing an administrative change to a
// room (capacity update, status change, deletion).
type RoomAction struct {
	ID        uint64    `json:"id"`         // room_actions.id
	RoomID    uint64    `json:"room_id"`    // room_actions.room_id
	Action    string    `json:"action"`     // room_actions.action
	CreatedAt time.Time `json:"created_at"` // room_actions.created_at
}

// UserAction is an audit entry describing a notable account event such
// as self-deletion. Entries survive deletion of the user row so
// librarians retain a trail.
type UserAction struct {
	ID         uint64    `json:"id"`          // user_actions.id
	UserID     uint64    `json:"user_id"`     // user_actions.user_id
	UserName   string    `json:"user_name"`   // joined users.name, "Deleted User" when gone
	ActionType string    `json:"action_type"` // user_actions.action_type
	Details    string    `json:"details"`     // user_actions.details
	CreatedAt  time.Time `json:"created_at"`  // user_actions.created_at
}
