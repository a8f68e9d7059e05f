package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinician-availability/internal/logging"
	"github.com/hackgods/clinician-availability/internal/scheduling"
)

func main() {
	asJSON := flag.Bool("json", false, "print availability as JSON")
	flag.Parse()

	logger := logging.New("dev", "info")

	patient, roster, err := demoRoster()
	if err != nil {
		logger.Error("build demo roster", "err", err)
		os.Exit(1)
	}

	scheduler := scheduling.NewScheduler(scheduling.DefaultPolicy())
	availability := scheduler.AssessmentAvailability(roster, patient)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(availability); err != nil {
			logger.Error("encode availability", "err", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Assessment availability for %s %s (%s, %s)\n\n",
		patient.FirstName, patient.LastName, patient.State, patient.Insurance)

	for _, c := range roster {
		initial, ok := availability[c.ID]
		if !ok {
			continue
		}
		fmt.Printf("%s %s (%s)\n", c.FirstName, c.LastName, c.ClinicianType)
		if len(initial) == 0 {
			fmt.Println("  no assessment slots with a follow-up")
			continue
		}
		for _, a := range initial {
			fmt.Printf("  %s\n", a.Date.Format(time.RFC1123))
			for _, fu := range a.FollowUps {
				fmt.Printf("    follow-up %s\n", fu.Date.Format(time.RFC1123))
			}
		}
	}
}

func demoRoster() (scheduling.Patient, []scheduling.Clinician, error) {
	now := time.Now().UTC()

	patient := scheduling.Patient{
		ID:        uuid.New(),
		FirstName: "Byrne",
		LastName:  "Hollander",
		State:     "NY",
		Insurance: "AETNA",
		CreatedAt: now,
		UpdatedAt: now,
	}

	jane := scheduling.Clinician{
		ID:                    uuid.New(),
		FirstName:             "Jane",
		LastName:              "Doe",
		States:                []string{"NY", "CA"},
		Insurances:            []string{"AETNA", "CIGNA"},
		ClinicianType:         scheduling.Psychologist,
		MaxDailyAppointments:  2,
		MaxWeeklyAppointments: 8,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	for _, ts := range []string{
		"2024-08-19T12:00:00.000Z",
		"2024-08-19T12:15:00.000Z",
		"2024-08-21T12:00:00.000Z",
		"2024-08-21T15:00:00.000Z",
		"2024-08-22T15:00:00.000Z",
		"2024-08-28T12:15:00.000Z",
	} {
		at, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return scheduling.Patient{}, nil, fmt.Errorf("parse slot %q: %w", ts, err)
		}
		jane.AvailableSlots = append(jane.AvailableSlots, scheduling.Slot{
			ID:          uuid.New(),
			ClinicianID: jane.ID,
			Date:        at,
			Length:      int(scheduling.AssessmentLength / time.Minute),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return patient, []scheduling.Clinician{jane}, nil
}
