package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hackgods/clinician-availability/internal/config"
	"github.com/hackgods/clinician-availability/internal/metrics"
	redisclient "github.com/hackgods/clinician-availability/internal/redis"
	"github.com/hackgods/clinician-availability/internal/scheduling"
)

type careType struct {
	name          string
	clinicianType scheduling.ClinicianType
}

var (
	therapy    = careType{name: "therapy", clinicianType: scheduling.Therapist}
	assessment = careType{name: "assessment", clinicianType: scheduling.Psychologist}
)

// Cache stores computed availability between requests.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Service struct {
	repo      Repository
	scheduler *scheduling.Scheduler
	cache     Cache
	locker    redisclient.Locker
	metrics   *metrics.AvailabilityMetrics
	logger    *slog.Logger
	tracer    trace.Tracer
	cacheTTL  time.Duration
}

type Option func(*Service)

// WithCache enables caching. The locker may be nil, in which case every
// replica stores what it computes.
func WithCache(cache Cache, locker redisclient.Locker) Option {
	return func(s *Service) {
		s.cache = cache
		s.locker = locker
	}
}

func WithMetrics(m *metrics.AvailabilityMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(repo Repository, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		scheduler: scheduling.NewScheduler(policyFromConfig(cfg)),
		logger:    slog.Default(),
		tracer:    otel.Tracer("github.com/hackgods/clinician-availability/internal/availability"),
		cacheTTL:  cfg.CacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// policyFromConfig maps config onto a scheduling policy. Zero lengths and an
// unset follow-up window fall back to the defaults.
func policyFromConfig(cfg config.Config) scheduling.Policy {
	policy := scheduling.DefaultPolicy()
	if cfg.TherapyLength > 0 {
		policy.TherapyLength = cfg.TherapyLength
	}
	if cfg.AssessmentLength > 0 {
		policy.AssessmentLength = cfg.AssessmentLength
	}
	if cfg.FollowUpMaxDays > 0 {
		policy.FollowUpWindow = scheduling.FollowUpWindow{
			MinDays: cfg.FollowUpMinDays,
			MaxDays: cfg.FollowUpMaxDays,
		}
	}
	policy.Calendar = scheduling.Calendar{WeekStart: cfg.WeekStart}
	return policy
}

// TherapyAvailability returns the therapy slots each eligible therapist can
// offer the patient, keyed by clinician ID.
func (s *Service) TherapyAvailability(ctx context.Context, patientID uuid.UUID) (map[uuid.UUID][]scheduling.Slot, error) {
	return lookup(ctx, s, therapy, patientID,
		s.scheduler.TherapyAvailability,
		func(av map[uuid.UUID][]scheduling.Slot) int {
			n := 0
			for _, slots := range av {
				n += len(slots)
			}
			return n
		},
	)
}

// AssessmentAvailability returns the initial assessment slots, each with
// its follow-up options, for every eligible psychologist.
func (s *Service) AssessmentAvailability(ctx context.Context, patientID uuid.UUID) (map[uuid.UUID][]scheduling.InitialAssessment, error) {
	return lookup(ctx, s, assessment, patientID,
		s.scheduler.AssessmentAvailability,
		func(av map[uuid.UUID][]scheduling.InitialAssessment) int {
			n := 0
			for _, initial := range av {
				n += len(initial)
			}
			return n
		},
	)
}

func lookup[T any](
	ctx context.Context,
	s *Service,
	care careType,
	patientID uuid.UUID,
	compute func([]scheduling.Clinician, scheduling.Patient) T,
	offered func(T) int,
) (T, error) {
	ctx, span := s.tracer.Start(ctx, "availability."+care.name,
		trace.WithAttributes(
			attribute.String("care_type", care.name),
			attribute.String("patient.id", patientID.String()),
		))
	defer span.End()

	key := care.name + ":" + patientID.String()

	var result T
	if s.cache != nil {
		found, err := s.cache.Get(ctx, key, &result)
		if err != nil {
			s.logger.Warn("availability cache read failed", "key", key, "err", err)
		} else if found {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			s.metrics.ObserveRequest(care.name, metrics.OutcomeHit)
			return result, nil
		}
	}

	run := func(ctx context.Context) error {
		start := time.Now()
		patient, roster, err := s.load(ctx, care, patientID)
		if err != nil {
			return err
		}
		result = compute(roster, *patient)
		s.metrics.ObserveCompute(care.name, time.Since(start).Seconds())
		return nil
	}

	err := s.computeAndStore(ctx, key, run, func(ctx context.Context) {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", "key", key, "err", err)
		}
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveRequest(care.name, metrics.OutcomeError)
		var zero T
		return zero, err
	}

	n := offered(result)
	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.Int("slots.offered", n))
	s.metrics.ObserveRequest(care.name, metrics.OutcomeMiss)
	s.metrics.ObserveSlotsOffered(care.name, n)
	s.logger.Debug("availability computed", "care_type", care.name, "patient_id", patientID, "slots", n)

	return result, nil
}

// computeAndStore runs compute under the request context and, when caching
// is enabled, stores the result while holding the entry's lock. The lock
// covers only the write. If another replica holds the lock the result is
// returned without storing.
func (s *Service) computeAndStore(ctx context.Context, key string, compute func(context.Context) error, store func(context.Context)) error {
	if err := compute(ctx); err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	if s.locker == nil {
		store(ctx)
		return nil
	}

	err := s.locker.WithLock(ctx, "availability:"+key, func(lockCtx context.Context) error {
		store(lockCtx)
		return nil
	})
	if err != nil && !errors.Is(err, redisclient.ErrLockNotAcquired) {
		s.logger.Warn("availability cache lock failed", "key", key, "err", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, care careType, patientID uuid.UUID) (*scheduling.Patient, []scheduling.Clinician, error) {
	patient, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("load patient: %w", err)
	}
	if err := patient.Validate(); err != nil {
		return nil, nil, err
	}

	roster, err := s.repo.ListClinicians(ctx, care.clinicianType)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s roster: %w", care.name, err)
	}

	return patient, roster, nil
}
