// Package booking implements the reservation ledger: slot arithmetic,
// cost calculation, the reservation state machine and the payment/
// balance coordinator. Handlers call into Service; persistence is
// behind the store interfaces implemented in internal/repository.
package booking

import "time"

// Slots is the fixed ordered grid of bookable time points, hourly from
// 08:00 to 20:00. A reservation occupies the half-open index range
// [StartSlot, EndSlot); duration in hours is the index difference.
var Slots = []string{
	"08:00", "09:00", "10:00", "11:00",
	"12:00", "13:00", "14:00", "15:00",
	"16:00", "17:00", "18:00", "19:00", "20:00",
}

// SlotLabel returns the clock label for a slot index.
func SlotLabel(i int) (string, bool) {
	if i < 0 || i >= len(Slots) {
		return "", false
	}
	return Slots[i], true
}

// ValidRange reports whether [start, end) is a well-formed slot range:
// both indices on the grid and end strictly after start.
func ValidRange(start, end int) bool {
	return start >= 0 && end <= len(Slots)-1 && end > start
}

// Hours returns the whole-hour duration of a slot range. The caller
// must have validated the range first.
func Hours(start, end int) int {
	return end - start
}

const dateLayout = "2006-01-02"

// ValidDate reports whether s parses as a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
