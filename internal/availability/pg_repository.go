package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinician-availability/internal/scheduling"
)

// DB is the subset of pgxpool.Pool used by PgRepository.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db     DB
	logger *slog.Logger
}

func NewPgRepository(db DB, logger *slog.Logger) *PgRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgRepository{db: db, logger: logger}
}

// Helpers

func scanPatient(row pgx.Row) (*scheduling.Patient, error) {
	var p scheduling.Patient

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.State,
		&p.Insurance,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanClinician(row pgx.Row) (scheduling.Clinician, error) {
	var c scheduling.Clinician
	var clinicianType string

	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&clinicianType,
		&c.States,
		&c.Insurances,
		&c.MaxDailyAppointments,
		&c.MaxWeeklyAppointments,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return scheduling.Clinician{}, err
	}

	c.ClinicianType = scheduling.ClinicianType(clinicianType)
	return c, nil
}

func scanSlot(row pgx.Row) (scheduling.Slot, error) {
	var s scheduling.Slot

	err := row.Scan(
		&s.ID,
		&s.ClinicianID,
		&s.Date,
		&s.Length,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return scheduling.Slot{}, err
	}

	// pgx decodes timestamptz in the local zone; day and week buckets are UTC.
	s.Date = s.Date.UTC()
	return s, nil
}

func scanAppointment(row pgx.Row) (scheduling.Appointment, error) {
	var a scheduling.Appointment
	var appointmentType, status string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ClinicianID,
		&a.ScheduledFor,
		&appointmentType,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return scheduling.Appointment{}, err
	}

	a.ScheduledFor = a.ScheduledFor.UTC()
	a.AppointmentType = scheduling.AppointmentType(appointmentType)
	a.Status = scheduling.AppointmentStatus(status)
	return a, nil
}

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*scheduling.Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, state, insurance, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) ListClinicians(ctx context.Context, clinicianType scheduling.ClinicianType) ([]scheduling.Clinician, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, clinician_type, states, insurances,
		       max_daily_appointments, max_weekly_appointments, created_at, updated_at
		FROM clinicians
		WHERE clinician_type = $1
		ORDER BY created_at, id
	`, string(clinicianType))
	if err != nil {
		return nil, fmt.Errorf("query clinicians: %w", err)
	}

	clinicians, err := collect(rows, scanClinician)
	if err != nil {
		return nil, fmt.Errorf("scan clinicians: %w", err)
	}
	if len(clinicians) == 0 {
		return nil, nil
	}

	index := make(map[uuid.UUID]int, len(clinicians))
	ids := make([]string, 0, len(clinicians))
	for i, c := range clinicians {
		index[c.ID] = i
		ids = append(ids, c.ID.String())
	}

	if err := r.attachSlots(ctx, ids, index, clinicians); err != nil {
		return nil, err
	}
	if err := r.attachAppointments(ctx, ids, index, clinicians); err != nil {
		return nil, err
	}

	roster := clinicians[:0]
	for _, c := range clinicians {
		if err := c.Validate(); err != nil {
			r.logger.Warn("skipping invalid clinician", "clinician_id", c.ID, "err", err)
			continue
		}
		roster = append(roster, c)
	}

	return roster, nil
}

func (r *PgRepository) attachSlots(ctx context.Context, ids []string, index map[uuid.UUID]int, clinicians []scheduling.Clinician) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, clinician_id, start_time, length_minutes, created_at, updated_at
		FROM available_slots
		WHERE clinician_id = ANY($1::uuid[])
		ORDER BY start_time, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query slots: %w", err)
	}

	slots, err := collect(rows, scanSlot)
	if err != nil {
		return fmt.Errorf("scan slots: %w", err)
	}

	for _, s := range slots {
		i := index[s.ClinicianID]
		clinicians[i].AvailableSlots = append(clinicians[i].AvailableSlots, s)
	}
	return nil
}

func (r *PgRepository) attachAppointments(ctx context.Context, ids []string, index map[uuid.UUID]int, clinicians []scheduling.Clinician) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_id, clinician_id, scheduled_for, appointment_type, status, created_at, updated_at
		FROM appointments
		WHERE clinician_id = ANY($1::uuid[])
		ORDER BY scheduled_for, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query appointments: %w", err)
	}

	appts, err := collect(rows, scanAppointment)
	if err != nil {
		return fmt.Errorf("scan appointments: %w", err)
	}

	for _, a := range appts {
		i := index[a.ClinicianID]
		clinicians[i].Appointments = append(clinicians[i].Appointments, a)
	}
	return nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
