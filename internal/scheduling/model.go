package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ClinicianType string

const (
	Therapist    ClinicianType = "THERAPIST"
	Psychologist ClinicianType = "PSYCHOLOGIST"
)

func (t ClinicianType) Valid() bool {
	return t == Therapist || t == Psychologist
}

type AppointmentType string

const (
	AssessmentSession1 AppointmentType = "ASSESSMENT_SESSION_1"
	AssessmentSession2 AppointmentType = "ASSESSMENT_SESSION_2"
	TherapyIntake      AppointmentType = "THERAPY_INTAKE"
	TherapySixtyMins   AppointmentType = "THERAPY_SIXTY_MINS"
)

type AppointmentStatus string

const (
	StatusUpcoming         AppointmentStatus = "UPCOMING"
	StatusOccurred         AppointmentStatus = "OCCURRED"
	StatusNoShow           AppointmentStatus = "NO_SHOW"
	StatusRescheduled      AppointmentStatus = "RE_SCHEDULED"
	StatusCancelled        AppointmentStatus = "CANCELLED"
	StatusLateCancellation AppointmentStatus = "LATE_CANCELLATION"
)

// ErrInvalidRecord marks a patient or clinician record that should not reach the scheduler.
var ErrInvalidRecord = errors.New("invalid record")

type Patient struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	State     string    `json:"state"`
	Insurance string    `json:"insurance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Patient) Validate() error {
	switch {
	case p.ID == uuid.Nil:
		return fmt.Errorf("%w: patient id is empty", ErrInvalidRecord)
	case p.State == "":
		return fmt.Errorf("%w: patient %s has no state", ErrInvalidRecord, p.ID)
	case p.Insurance == "":
		return fmt.Errorf("%w: patient %s has no insurance", ErrInvalidRecord, p.ID)
	}
	return nil
}

type Clinician struct {
	ID                    uuid.UUID     `json:"id"`
	FirstName             string        `json:"first_name"`
	LastName              string        `json:"last_name"`
	States                []string      `json:"states"`
	Insurances            []string      `json:"insurances"`
	ClinicianType         ClinicianType `json:"clinician_type"`
	Appointments          []Appointment `json:"appointments"`
	AvailableSlots        []Slot        `json:"available_slots"`
	MaxDailyAppointments  int           `json:"max_daily_appointments"`
	MaxWeeklyAppointments int           `json:"max_weekly_appointments"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

func (c Clinician) Validate() error {
	switch {
	case c.ID == uuid.Nil:
		return fmt.Errorf("%w: clinician id is empty", ErrInvalidRecord)
	case !c.ClinicianType.Valid():
		return fmt.Errorf("%w: clinician %s has unknown type %q", ErrInvalidRecord, c.ID, c.ClinicianType)
	}
	for _, s := range c.AvailableSlots {
		if s.ClinicianID != c.ID {
			return fmt.Errorf("%w: slot %s does not belong to clinician %s", ErrInvalidRecord, s.ID, c.ID)
		}
	}
	return nil
}

// Slot is an open start time offered by a clinician. Length is in minutes.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	ClinicianID uuid.UUID `json:"clinician_id"`
	Date        time.Time `json:"date"`
	Length      int       `json:"length"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	ClinicianID     uuid.UUID         `json:"clinician_id"`
	ScheduledFor    time.Time         `json:"scheduled_for"`
	AppointmentType AppointmentType   `json:"appointment_type"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// InitialAssessment is a first assessment session together with the slots
// that can hold its second session.
type InitialAssessment struct {
	Slot
	FollowUps []Slot `json:"followups"`
}
