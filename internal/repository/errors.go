// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between different failure
// scenarios without string matching on driver errors.
package repository

import "errors"

// ErrEmailExists is returned when a registration collides with an
// existing account email. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrStudentIDExists is returned when a registration collides with an
// existing student ID.
var ErrStudentIDExists = errors.New("student id already exists")

// ErrDuplicateTransaction is returned when a payment insert collides
// with an existing transaction_id. The booking service treats this as
// a ledger integrity violation.
var ErrDuplicateTransaction = errors.New("duplicate transaction id")
