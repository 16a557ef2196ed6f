package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleMember    = "MEMBER"
	RoleLibrarian = "LIBRARIAN"
)

// User represents an application user record as stored in the
// `users` table. Members book rooms; librarians administer rooms,
// booking rules and reports. The json tags are omitted because these
// structs are used by the repository layer; handlers define separate
// response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  StudentID    – library card / student number ("-" for staff).
//  Faculty      – faculty the member belongs to.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – MEMBER or LIBRARIAN.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	StudentID    string    // users.student_id
	Faculty      string    // users.faculty
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
