package scheduling

import (
	"slices"
	"time"
)

// MaximizeSlots picks the largest set of non-overlapping sessions of the
// given duration from slots, which must already be ordered by start time.
// A slot is taken when it starts at or after the previous pick plus duration,
// so back-to-back slots are both kept.
func MaximizeSlots(slots []Slot, duration time.Duration) []Slot {
	result := make([]Slot, 0, len(slots))

	var last time.Time
	for _, slot := range slots {
		if len(result) == 0 || !slot.Date.Before(last.Add(duration)) {
			result = append(result, slot)
			last = slot.Date
		}
	}

	return result
}

// SortedSlots returns a copy of slots ordered by start time. Slots starting
// at the same instant keep their relative order.
func SortedSlots(slots []Slot) []Slot {
	sorted := slices.Clone(slots)
	slices.SortStableFunc(sorted, func(a, b Slot) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}
