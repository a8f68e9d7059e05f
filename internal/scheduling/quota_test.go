package scheduling

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableSlots_NoAppointments(t *testing.T) {
	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, func(id uuid.UUID) []Slot {
		return []Slot{slotOnDay(id, 0), slotOnDay(id, 1)}
	})

	got := AvailableSlots(c, TherapyLength, DefaultCalendar)
	assert.Equal(t, slotIDs(c.AvailableSlots), slotIDs(got))
}

func TestAvailableSlots_NoSlots(t *testing.T) {
	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, nil)
	assert.Empty(t, AvailableSlots(c, TherapyLength, DefaultCalendar))
}

func TestAvailableSlots_DailyCapReached(t *testing.T) {
	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, func(id uuid.UUID) []Slot {
		return []Slot{slotOnDay(id, 0), slotOnDay(id, 1)}
	})
	c.MaxDailyAppointments = 2
	c.Appointments = []Appointment{
		appointmentAt(c.ID, baseDate.Add(-2*time.Hour)),
		appointmentAt(c.ID, baseDate.Add(3*time.Hour)),
	}

	got := AvailableSlots(c, TherapyLength, DefaultCalendar)
	assert.Equal(t, []uuid.UUID{c.AvailableSlots[1].ID}, slotIDs(got))
}

func TestAvailableSlots_DailyCapNotYetReached(t *testing.T) {
	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, func(id uuid.UUID) []Slot {
		return []Slot{slotOnDay(id, 0)}
	})
	c.MaxDailyAppointments = 2
	c.Appointments = []Appointment{appointmentAt(c.ID, baseDate.Add(-2*time.Hour))}

	assert.Len(t, AvailableSlots(c, TherapyLength, DefaultCalendar), 1)
}

func TestAvailableSlots_WeeklyCapUsesWeekBoundary(t *testing.T) {
	// baseDate is Wed 2025-01-15; its week runs Sun 01-12 .. Sat 01-18.
	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, func(id uuid.UUID) []Slot {
		return []Slot{
			slotOnDay(id, 0), // Wed, same week as the appointments
			slotOnDay(id, 3), // Sat, same week
			slotOnDay(id, 4), // Sun, next week
		}
	})
	c.MaxWeeklyAppointments = 2
	c.Appointments = []Appointment{
		appointmentAt(c.ID, time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)),
		appointmentAt(c.ID, time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)),
	}

	got := AvailableSlots(c, TherapyLength, DefaultCalendar)
	assert.Equal(t, []uuid.UUID{c.AvailableSlots[2].ID}, slotIDs(got))
}

func TestAvailableSlots_NonPositiveCapsFilterEverything(t *testing.T) {
	for _, caps := range [][2]int{{0, 40}, {8, 0}, {-1, 40}, {8, -5}} {
		c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, func(id uuid.UUID) []Slot {
			return []Slot{slotOnDay(id, 0), slotOnDay(id, 2)}
		})
		c.MaxDailyAppointments, c.MaxWeeklyAppointments = caps[0], caps[1]

		assert.Empty(t, AvailableSlots(c, TherapyLength, DefaultCalendar), "caps %v", caps)
	}
}

func TestAvailableSlots_SiblingSlotsDoNotReserveCapacity(t *testing.T) {
	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, func(id uuid.UUID) []Slot {
		return []Slot{
			slotAt(id, baseDate),
			slotAt(id, baseDate.Add(2*time.Hour)),
			slotAt(id, baseDate.Add(4*time.Hour)),
		}
	})
	c.MaxDailyAppointments = 1

	// One free place that day, yet every maximized slot is offered.
	assert.Len(t, AvailableSlots(c, TherapyLength, DefaultCalendar), 3)
}

func TestAvailableSlots_SortsBeforeMaximizing(t *testing.T) {
	id := uuid.New()
	a := slotAt(id, baseDate)
	b := slotAt(id, baseDate.Add(30*time.Minute))
	cSlot := slotAt(id, baseDate.Add(60*time.Minute))

	c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, nil)
	c.ID = id
	c.AvailableSlots = []Slot{cSlot, b, a}

	got := AvailableSlots(c, TherapyLength, DefaultCalendar)
	assert.Equal(t, []uuid.UUID{a.ID, cSlot.ID}, slotIDs(got))
}

func TestAvailableSlots_NeverReturnsSlotAtOrOverCap(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	cal := DefaultCalendar

	for round := 0; round < 100; round++ {
		c := newClinician(Therapist, []string{"CA"}, []string{"AETNA"}, nil)
		c.MaxDailyAppointments = rng.Intn(4)
		c.MaxWeeklyAppointments = rng.Intn(10)
		for i := 0; i < 20; i++ {
			c.AvailableSlots = append(c.AvailableSlots, slotAt(c.ID, baseDate.Add(time.Duration(i)*7*time.Hour)))
		}
		appointments := rng.Intn(15)
		for i := 0; i < appointments; i++ {
			c.Appointments = append(c.Appointments, appointmentAt(c.ID, baseDate.Add(time.Duration(rng.Intn(14*24))*time.Hour)))
		}

		daily := map[string]int{}
		weekly := map[string]int{}
		for _, a := range c.Appointments {
			daily[cal.DayKey(a.ScheduledFor)]++
			weekly[cal.WeekKey(a.ScheduledFor)]++
		}

		for _, s := range AvailableSlots(c, TherapyLength, cal) {
			require.Less(t, daily[cal.DayKey(s.Date)], c.MaxDailyAppointments)
			require.Less(t, weekly[cal.WeekKey(s.Date)], c.MaxWeeklyAppointments)
		}
	}
}
