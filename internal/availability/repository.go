package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hackgods/clinician-availability/internal/scheduling"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
)

// Repository loads the records the scheduler works on.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*scheduling.Patient, error)

	// ListClinicians returns every clinician of the given type with its open
	// slots (ordered by start time) and existing appointments attached.
	ListClinicians(ctx context.Context, clinicianType scheduling.ClinicianType) ([]scheduling.Clinician, error)
}
