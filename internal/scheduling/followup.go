package scheduling

import "github.com/google/uuid"

// FollowUpWindow bounds the second session of an assessment, in calendar days
// after the first one. A candidate qualifies when MinDays < diff <= MaxDays.
type FollowUpWindow struct {
	MinDays int
	MaxDays int
}

var DefaultFollowUpWindow = FollowUpWindow{MinDays: 1, MaxDays: 7}

// PairFollowUps maps each slot ID to the later slots that fall inside the
// follow-up window. Slots without follow-ups have no entry.
//
// Eligibility only depends on the calendar day of the initial slot, so the
// list computed for the first slot of a day is reused for the rest of that
// day. Same-day slots therefore share one slice; callers must not modify it.
func PairFollowUps(slots []Slot, window FollowUpWindow, cal Calendar) map[uuid.UUID][]Slot {
	slots = SortedSlots(slots)
	followUps := make(map[uuid.UUID][]Slot)
	byDay := make(map[string][]Slot)

	for i, slot := range slots {
		day := cal.DayKey(slot.Date)

		candidates, seen := byDay[day]
		if !seen {
			for _, next := range slots[i+1:] {
				diff := cal.DaysBetween(slot.Date, next.Date)
				if diff <= window.MinDays {
					continue
				}
				if diff > window.MaxDays {
					break
				}
				candidates = append(candidates, next)
			}
			// cached even when empty
			byDay[day] = candidates
		}

		if len(candidates) > 0 {
			followUps[slot.ID] = candidates
		}
	}

	return followUps
}
