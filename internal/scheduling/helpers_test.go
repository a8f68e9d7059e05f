package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// 2025-01-15 is a Wednesday.
var baseDate = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func slotAt(clinicianID uuid.UUID, at time.Time) Slot {
	return Slot{
		ID:          uuid.New(),
		ClinicianID: clinicianID,
		Date:        at,
		Length:      60,
		CreatedAt:   baseDate,
		UpdatedAt:   baseDate,
	}
}

func slotOnDay(clinicianID uuid.UUID, daysOffset int) Slot {
	return slotAt(clinicianID, baseDate.AddDate(0, 0, daysOffset))
}

func appointmentAt(clinicianID uuid.UUID, at time.Time) Appointment {
	return Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		ClinicianID:     clinicianID,
		ScheduledFor:    at,
		AppointmentType: TherapySixtyMins,
		Status:          StatusUpcoming,
	}
}

func newClinician(t ClinicianType, states, insurances []string, slots func(id uuid.UUID) []Slot) Clinician {
	id := uuid.New()
	c := Clinician{
		ID:                    id,
		FirstName:             "Test",
		LastName:              "Clinician",
		States:                states,
		Insurances:            insurances,
		ClinicianType:         t,
		MaxDailyAppointments:  8,
		MaxWeeklyAppointments: 40,
		CreatedAt:             baseDate,
		UpdatedAt:             baseDate,
	}
	if slots != nil {
		c.AvailableSlots = slots(id)
	}
	return c
}

func newPatient(state, insurance string) Patient {
	return Patient{
		ID:        uuid.New(),
		FirstName: "Test",
		LastName:  "Patient",
		State:     state,
		Insurance: insurance,
	}
}

func slotIDs(slots []Slot) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}
