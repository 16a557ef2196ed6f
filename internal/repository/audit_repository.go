package repository

import (
	"context"
	"database/sql"

	"github.com/libroom/reserve/internal/model"
)

// AuditRepo appends and reads audit trails. Room actions track
// administrative changes; user actions track account events and are
// kept after the user row is deleted.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// RecordRoomAction appends a room audit entry.
func (r *AuditRepo) RecordRoomAction(ctx context.Context, roomID uint64, action string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO room_actions (room_id, action) VALUES (?,?)", roomID, action)
	return err
}

// RecordUserAction appends an account audit entry.
func (r *AuditRepo) RecordUserAction(ctx context.Context, userID uint64, actionType, details string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_actions (user_id, action_type, details) VALUES (?,?,?)",
		userID, actionType, details)
	return err
}

// RoomActions returns the room audit trail, newest first.
func (r *AuditRepo) RoomActions(ctx context.Context) ([]model.RoomAction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, room_id, action, created_at FROM room_actions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomAction, 0)
	for rows.Next() {
		var a model.RoomAction
		if err := rows.Scan(&a.ID, &a.RoomID, &a.Action, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UserActions returns the account audit trail, newest first. The user
// name is joined when the account still exists.
func (r *AuditRepo) UserActions(ctx context.Context) ([]model.UserAction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.id, a.user_id, u.name, a.action_type, a.details, a.created_at
		 FROM user_actions a
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.UserAction, 0)
	for rows.Next() {
		var a model.UserAction
		var name sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &name, &a.ActionType, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if name.Valid {
			a.UserName = name.String
		} else {
			a.UserName = "Deleted User"
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
