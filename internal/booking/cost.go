package booking

// Quote is the cost breakdown for a reservation. Room cost scales with
// whole hours; each equipment item is charged once regardless of
// duration.
type Quote struct {
	Hours         int   `json:"hours"`
	RoomCost      int64 `json:"room_cost"`
	EquipmentCost int64 `json:"equipment_cost"`
	Total         int64 `json:"total"`
}

// ComputeCost converts a room's hourly price, a slot range and the
// resolved equipment prices into a Quote. It is a pure function:
// identical inputs always yield identical output. Equipment ids must
// already be resolved to prices by the caller; resolution failures are
// ErrUnknownEquipment at that stage.
func ComputeCost(pricePerHour int64, startSlot, endSlot int, equipmentPrices []int64) (Quote, error) {
	if !ValidRange(startSlot, endSlot) {
		return Quote{}, ErrInvalidTimeRange
	}
	q := Quote{Hours: Hours(startSlot, endSlot)}
	q.RoomCost = int64(q.Hours) * pricePerHour
	for _, p := range equipmentPrices {
		q.EquipmentCost += p
	}
	q.Total = q.RoomCost + q.EquipmentCost
	return q, nil
}
