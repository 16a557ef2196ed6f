package model

import "time"

// PaymentStatus is the closed set of payment states. A reservation has
// at most one non-refunded payment at any time.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod is the closed set of accepted payment methods. Only
// SYSTEM_BALANCE moves internal funds; the external methods are
// simulated ledger entries recorded as submitted.
type PaymentMethod string

const (
	MethodSystemBalance PaymentMethod = "SYSTEM_BALANCE"
	MethodOnlineBanking PaymentMethod = "ONLINE_BANKING"
	MethodCreditCard    PaymentMethod = "CREDIT_CARD"
)

// Payment records a settlement for a reservation as stored in the
// `payments` table. Bank and account fields are opaque metadata, not
// validated financial instruments.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this payment settles.
//  UserID        – paying member.
//  Amount        – total charged in credits.
//  Method        – SYSTEM_BALANCE, ONLINE_BANKING or CREDIT_CARD.
//  BankName      – counterpart bank name (empty for system balance).
//  AccountNumber – counterpart account or card digits.
//  AccountHolder – counterpart holder name.
//  TransactionID – unique "TXN-..." identifier, never reused.
//  Status        – PENDING, COMPLETED, FAILED or REFUNDED.
//  PaidAt        – when the payment completed.
//  CreatedAt     – creation timestamp.
type Payment struct {
	ID            uint64        // payments.id
	ReservationID uint64        // payments.reservation_id
	UserID        uint64        // payments.user_id
	Amount        int64         // payments.amount
	Method        PaymentMethod // payments.method
	BankName      string        // payments.bank_name
	AccountNumber string        // payments.account_number
	AccountHolder string        // payments.account_holder
	TransactionID string        // payments.transaction_id
	Status        PaymentStatus // payments.status
	PaidAt        time.Time     // payments.paid_at
	CreatedAt     time.Time     // payments.created_at
}

// PaymentDetail joins reservation and room context onto a payment for
// history listings.
type PaymentDetail struct {
	ID            uint64        `json:"id"`
	ReservationID uint64        `json:"reservation_id"`
	UserID        uint64        `json:"user_id"`
	UserName      string        `json:"user_name,omitempty"`
	RoomName      string        `json:"room_name"`
	Date          string        `json:"date"`
	Amount        int64         `json:"amount"`
	Method        PaymentMethod `json:"method"`
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
	PaidAt        time.Time     `json:"paid_at"`
}
