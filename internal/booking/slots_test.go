package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotGrid(t *testing.T) {
	assert.Len(t, Slots, 13)
	assert.Equal(t, "08:00", Slots[0])
	assert.Equal(t, "20:00", Slots[len(Slots)-1])
}

func TestSlotLabel(t *testing.T) {
	label, ok := SlotLabel(0)
	assert.True(t, ok)
	assert.Equal(t, "08:00", label)

	_, ok = SlotLabel(len(Slots))
	assert.False(t, ok)

	_, ok = SlotLabel(-1)
	assert.False(t, ok)
}

func TestValidRange(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"single hour", 0, 1, true},
		{"full day", 0, 12, true},
		{"middle of day", 3, 6, true},
		{"zero length", 4, 4, false},
		{"inverted", 6, 3, false},
		{"negative start", -1, 2, false},
		{"end past grid", 5, 13, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidRange(tc.start, tc.end))
		})
	}
}

func TestHours(t *testing.T) {
	assert.Equal(t, 3, Hours(2, 5))
	assert.Equal(t, 1, Hours(0, 1))
	assert.Equal(t, 12, Hours(0, 12))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-09-01"))
	assert.True(t, ValidDate("2026-02-28"))
	assert.False(t, ValidDate("2026-02-30"))
	assert.False(t, ValidDate("01-09-2026"))
	assert.False(t, ValidDate("2026/09/01"))
	assert.False(t, ValidDate(""))
	assert.False(t, ValidDate("not a date"))
}
