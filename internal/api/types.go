package api

import (
	"github.com/google/uuid"

	"github.com/hackgods/clinician-availability/internal/scheduling"
)

// TherapyAvailabilityResponse lists single-session slots per therapist.
type TherapyAvailabilityResponse struct {
	PatientID    uuid.UUID                       `json:"patient_id"`
	CareType     string                          `json:"care_type"`
	Availability map[uuid.UUID][]scheduling.Slot `json:"availability"`
}

// AssessmentAvailabilityResponse lists initial assessment slots, each with
// its follow-up options, per psychologist.
type AssessmentAvailabilityResponse struct {
	PatientID    uuid.UUID                                    `json:"patient_id"`
	CareType     string                                       `json:"care_type"`
	Availability map[uuid.UUID][]scheduling.InitialAssessment `json:"availability"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
