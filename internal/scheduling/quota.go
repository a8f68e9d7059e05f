package scheduling

import "time"

type appointmentLoad struct {
	daily  map[string]int
	weekly map[string]int
}

func countAppointments(appointments []Appointment, cal Calendar) appointmentLoad {
	load := appointmentLoad{
		daily:  make(map[string]int),
		weekly: make(map[string]int),
	}
	for _, appt := range appointments {
		load.daily[cal.DayKey(appt.ScheduledFor)]++
		load.weekly[cal.WeekKey(appt.ScheduledFor)]++
	}
	return load
}

// AvailableSlots maximizes the clinician's open slots for the given session
// duration and drops every slot whose day or week already holds as many
// appointments as the clinician's caps allow.
//
// Each slot is checked against the existing appointments only. Two returned
// slots may compete for the last free place in the same day or week, so the
// result lists what is offerable now, not what is jointly bookable.
func AvailableSlots(clinician Clinician, duration time.Duration, cal Calendar) []Slot {
	maximized := MaximizeSlots(SortedSlots(clinician.AvailableSlots), duration)
	load := countAppointments(clinician.Appointments, cal)

	available := make([]Slot, 0, len(maximized))
	for _, slot := range maximized {
		if load.daily[cal.DayKey(slot.Date)] >= clinician.MaxDailyAppointments {
			continue
		}
		if load.weekly[cal.WeekKey(slot.Date)] >= clinician.MaxWeeklyAppointments {
			continue
		}
		available = append(available, slot)
	}

	return available
}
