package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCostRoomOnly(t *testing.T) {
	// 10 credits/hour for three slots: 08:00 to 11:00.
	q, err := ComputeCost(10, 0, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Hours)
	assert.Equal(t, int64(30), q.RoomCost)
	assert.Equal(t, int64(0), q.EquipmentCost)
	assert.Equal(t, int64(30), q.Total)
}

func TestComputeCostWithEquipment(t *testing.T) {
	// Equipment prices are flat per reservation, not multiplied by hours.
	q, err := ComputeCost(25, 2, 4, []int64{15, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Hours)
	assert.Equal(t, int64(50), q.RoomCost)
	assert.Equal(t, int64(20), q.EquipmentCost)
	assert.Equal(t, int64(70), q.Total)
}

func TestComputeCostDeterministic(t *testing.T) {
	first, err := ComputeCost(40, 1, 5, []int64{10})
	require.NoError(t, err)
	second, err := ComputeCost(40, 1, 5, []int64{10})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeCostRejectsBadRange(t *testing.T) {
	_, err := ComputeCost(10, 5, 5, nil)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = ComputeCost(10, 6, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = ComputeCost(10, -1, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestComputeCostFreeRoom(t *testing.T) {
	q, err := ComputeCost(0, 0, 2, []int64{7})
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.RoomCost)
	assert.Equal(t, int64(7), q.Total)
}
