package model

import "time"

// Balance holds a member's two ledgers as stored in the `balances`
// table: the internal system balance usable for payment and the
// simulated external bank balance usable only for top-ups. Both are
// non-negative at all times and the row is created in the same
// transaction as the user.
type Balance struct {
	UserID        uint64 // balances.user_id
	SystemCredits int64  // balances.system_credits
	BankCredits   int64  // balances.bank_credits
}

// TopUpTransaction is one immutable entry in the top-up history.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – member whose balances moved.
//  BankName  – external bank the member chose.
//  Amount    – credits moved from bank to system balance.
//  Status    – recorded outcome (always SUCCESS today).
//  CreatedAt – when the transfer happened.
type TopUpTransaction struct {
	ID        uint64    `json:"id"`         // topup_transactions.id
	UserID    uint64    `json:"user_id"`    // topup_transactions.user_id
	BankName  string    `json:"bank_name"`  // topup_transactions.bank_name
	Amount    int64     `json:"amount"`     // topup_transactions.amount
	Status    string    `json:"status"`     // topup_transactions.status
	CreatedAt time.Time `json:"created_at"` // topup_transactions.created_at
}
