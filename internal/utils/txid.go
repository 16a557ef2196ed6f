package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewTransactionID returns a payment transaction identifier of the form
// TXN-<unix seconds>-<8 hex chars>. The random suffix keeps identifiers
// unique even when several payments land in the same second; the
// payments table additionally enforces uniqueness so a collision can
// never pass silently.
func NewTransactionID() string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().UTC().Unix(), uuid.NewString()[:8])
}
