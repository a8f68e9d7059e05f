package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinician-availability/internal/config"
	"github.com/hackgods/clinician-availability/internal/db"
	"github.com/hackgods/clinician-availability/internal/logging"
	"github.com/hackgods/clinician-availability/internal/scheduling"
)

var (
	states     = []string{"NY", "CA", "TX", "FL", "NJ", "MA", "IL"}
	insurances = []string{"AETNA", "CIGNA", "UNITED", "BCBS", "HUMANA"}
)

type seeder struct {
	pool   *pgxpool.Pool
	faker  *gofakeit.Faker
	logger *slog.Logger
	start  time.Time
	days   int
}

type seededClinician struct {
	id            uuid.UUID
	clinicianType scheduling.ClinicianType
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("dev", "info").Error("config load error", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)
	logger.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.ApplySchema(context.Background(), pool); err != nil {
		logger.Error("apply schema", "err", err)
		os.Exit(1)
	}

	s := &seeder{
		pool:   pool,
		faker:  gofakeit.New(0),
		logger: logger,
		start:  time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1),
		days:   getInt("SEED_DAYS", 21),
	}

	bg := context.Background()

	clinicians, err := s.seedClinicians(bg, getInt("SEED_CLINICIANS", 60))
	if err != nil {
		logger.Error("seed clinicians", "err", err)
		os.Exit(1)
	}
	patients, err := s.seedPatients(bg, getInt("SEED_PATIENTS", 2000))
	if err != nil {
		logger.Error("seed patients", "err", err)
		os.Exit(1)
	}
	if err := s.seedSlots(bg, clinicians); err != nil {
		logger.Error("seed slots", "err", err)
		os.Exit(1)
	}
	if err := s.seedAppointments(bg, clinicians, patients); err != nil {
		logger.Error("seed appointments", "err", err)
		os.Exit(1)
	}

	logger.Info("seed complete")
}

func (s *seeder) seedClinicians(ctx context.Context, count int) ([]seededClinician, error) {
	s.logger.Info("seeding clinicians", "count", count)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	clinicians := make([]seededClinician, 0, count)
	for i := 0; i < count; i++ {
		c := seededClinician{id: uuid.New(), clinicianType: scheduling.Therapist}
		if s.faker.Bool() {
			c.clinicianType = scheduling.Psychologist
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO clinicians (id, first_name, last_name, clinician_type, states, insurances,
			                        max_daily_appointments, max_weekly_appointments, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		`, c.id, s.faker.FirstName(), s.faker.LastName(), string(c.clinicianType),
			s.pick(states, 1, 3), s.pick(insurances, 1, 4),
			s.faker.Number(2, 6), s.faker.Number(8, 25))
		if err != nil {
			return nil, err
		}
		clinicians = append(clinicians, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("clinicians seeded")
	return clinicians, nil
}

func (s *seeder) seedPatients(ctx context.Context, count int) ([]uuid.UUID, error) {
	s.logger.Info("seeding patients", "count", count)

	const batchSize = 500

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, first_name, last_name, state, insurance, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, id, s.faker.FirstName(), s.faker.LastName(),
				s.faker.RandomString(states), s.faker.RandomString(insurances))
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		s.logger.Info("patients seeded", "done", end, "total", count)
	}

	return ids, nil
}

// seedSlots offers start times every 15 minutes during working hours on
// weekdays. Many of them overlap, which is what the slot maximizer expects.
func (s *seeder) seedSlots(ctx context.Context, clinicians []seededClinician) error {
	s.logger.Info("seeding slots", "clinicians", len(clinicians), "days", s.days)

	now := time.Now().UTC()
	var rows [][]any
	for _, c := range clinicians {
		length := int(scheduling.TherapyLength / time.Minute)
		if c.clinicianType == scheduling.Psychologist {
			length = int(scheduling.AssessmentLength / time.Minute)
		}

		for d := 0; d < s.days; d++ {
			day := s.start.AddDate(0, 0, d)
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				continue
			}
			for minute := 9 * 60; minute < 17*60; minute += 15 {
				if s.faker.Number(0, 3) != 0 {
					continue
				}
				start := day.Add(time.Duration(minute) * time.Minute)
				rows = append(rows, []any{uuid.New(), c.id, start, length, now, now})
			}
		}
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"available_slots"},
		[]string{"id", "clinician_id", "start_time", "length_minutes", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return err
	}

	s.logger.Info("slots seeded", "count", n)
	return nil
}

func (s *seeder) seedAppointments(ctx context.Context, clinicians []seededClinician, patients []uuid.UUID) error {
	if len(patients) == 0 {
		return nil
	}
	s.logger.Info("seeding appointments")

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	count := 0
	for _, c := range clinicians {
		apptType := scheduling.TherapySixtyMins
		if c.clinicianType == scheduling.Psychologist {
			apptType = scheduling.AssessmentSession1
		}

		booked := s.faker.Number(0, 10)
		for i := 0; i < booked; i++ {
			day := s.start.AddDate(0, 0, s.faker.Number(-7, s.days-1))
			at := day.Add(time.Duration(s.faker.Number(9, 16)) * time.Hour)

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, patient_id, clinician_id, scheduled_for, appointment_type, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			`, uuid.New(), patients[s.faker.Number(0, len(patients)-1)], c.id, at,
				string(apptType), string(scheduling.StatusUpcoming))
			if err != nil {
				return err
			}
			count++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("appointments seeded", "count", count)
	return nil
}

// pick returns between lo and hi distinct values from options.
func (s *seeder) pick(options []string, lo, hi int) []string {
	shuffled := make([]string, len(options))
	copy(shuffled, options)
	s.faker.ShuffleStrings(shuffled)
	return shuffled[:s.faker.Number(lo, hi)]
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
