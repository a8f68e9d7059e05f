package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/clinician-availability/internal/availability"
	"github.com/hackgods/clinician-availability/internal/scheduling"
)

type AvailabilityService interface {
	TherapyAvailability(ctx context.Context, patientID uuid.UUID) (map[uuid.UUID][]scheduling.Slot, error)
	AssessmentAvailability(ctx context.Context, patientID uuid.UUID) (map[uuid.UUID][]scheduling.InitialAssessment, error)
}

func therapyAvailabilityHandler(svc AvailabilityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := patientIDParam(w, r)
		if !ok {
			return
		}

		av, err := svc.TherapyAvailability(r.Context(), patientID)
		if err != nil {
			handleAvailabilityError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, TherapyAvailabilityResponse{
			PatientID:    patientID,
			CareType:     "therapy",
			Availability: av,
		})
	}
}

func assessmentAvailabilityHandler(svc AvailabilityService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := patientIDParam(w, r)
		if !ok {
			return
		}

		av, err := svc.AssessmentAvailability(r.Context(), patientID)
		if err != nil {
			handleAvailabilityError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, AssessmentAvailabilityResponse{
			PatientID:    patientID,
			CareType:     "assessment",
			Availability: av,
		})
	}
}

func patientIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleAvailabilityError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, availability.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, scheduling.ErrInvalidRecord):
		writeError(w, http.StatusUnprocessableEntity, "invalid_patient_record", err.Error())
	default:
		logger.Error("availability lookup failed",
			"request_id", GetRequestID(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not compute availability")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
