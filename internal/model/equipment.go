package model

// Equipment is an optional add-on a member can attach to a reservation.
// The price is flat per reservation, never per hour or per unit.
//
// Fields:
//  ID    – primary key identifier.
//  Name  – equipment name (e.g. Projector).
//  Price – flat price in credits.
type Equipment struct {
	ID    uint64 `json:"id"`    // equipment.id
	Name  string `json:"name"`  // equipment.name
	Price int64  `json:"price"` // equipment.price
}
