// Package scheduling computes appointment availability for clinicians that
// match a patient's state and insurance.
//
// Everything in this package is a pure function of its inputs: rosters are
// read, never modified, and nothing is kept between calls.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

const (
	TherapyLength    = 60 * time.Minute
	AssessmentLength = 90 * time.Minute
)

// Policy holds the session lengths and calendar rules used by a Scheduler.
type Policy struct {
	TherapyLength    time.Duration
	AssessmentLength time.Duration
	FollowUpWindow   FollowUpWindow
	Calendar         Calendar
}

func DefaultPolicy() Policy {
	return Policy{
		TherapyLength:    TherapyLength,
		AssessmentLength: AssessmentLength,
		FollowUpWindow:   DefaultFollowUpWindow,
		Calendar:         DefaultCalendar,
	}
}

type Scheduler struct {
	policy Policy
}

func NewScheduler(policy Policy) *Scheduler {
	return &Scheduler{policy: policy}
}

func (s *Scheduler) Policy() Policy {
	return s.policy
}

// TherapyAvailability returns, per eligible therapist, the single-session
// slots the patient can currently be offered.
func (s *Scheduler) TherapyAvailability(roster []Clinician, patient Patient) map[uuid.UUID][]Slot {
	clinicians := FilterEligible(roster, patient, Therapist)
	availability := make(map[uuid.UUID][]Slot, len(clinicians))

	for _, c := range clinicians {
		availability[c.ID] = AvailableSlots(c, s.policy.TherapyLength, s.policy.Calendar)
	}

	return availability
}

// AssessmentAvailability returns, per eligible psychologist, the initial
// assessment slots that have at least one follow-up slot. Eligible
// psychologists without any such slot are listed with an empty slice.
func (s *Scheduler) AssessmentAvailability(roster []Clinician, patient Patient) map[uuid.UUID][]InitialAssessment {
	clinicians := FilterEligible(roster, patient, Psychologist)
	availability := make(map[uuid.UUID][]InitialAssessment, len(clinicians))

	for _, c := range clinicians {
		slots := AvailableSlots(c, s.policy.AssessmentLength, s.policy.Calendar)
		followUps := PairFollowUps(slots, s.policy.FollowUpWindow, s.policy.Calendar)

		assessments := make([]InitialAssessment, 0, len(followUps))
		for _, slot := range slots {
			fu := followUps[slot.ID]
			if len(fu) == 0 {
				continue
			}
			assessments = append(assessments, InitialAssessment{Slot: slot, FollowUps: fu})
		}
		availability[c.ID] = assessments
	}

	return availability
}
