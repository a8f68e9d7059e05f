package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinician-availability/internal/config"
	"github.com/hackgods/clinician-availability/internal/db"
	"github.com/hackgods/clinician-availability/internal/logging"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	TherapyRatio float64
	HotRatio     float64 // share of requests that reuse a small set of patients
	HotPatients  int
	PatientLimit int
	PostgresDSN  string
}

type DataPool struct {
	Patients []uuid.UUID
}

func (dp *DataPool) Pick(rng *rand.Rand, hotRatio float64, hot int) uuid.UUID {
	if hot > len(dp.Patients) {
		hot = len(dp.Patients)
	}
	if hot > 0 && rng.Float64() < hotRatio {
		return dp.Patients[rng.Intn(hot)]
	}
	return dp.Patients[rng.Intn(len(dp.Patients))]
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	NotFound  int64
	Error     int64
	Slots     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int, slots int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status == http.StatusOK:
		atomic.AddInt64(&om.Success, 1)
		atomic.AddInt64(&om.Slots, int64(slots))
	case status == http.StatusNotFound:
		atomic.AddInt64(&om.NotFound, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Therapy    OperationMetrics
	Assessment OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	logger  *slog.Logger
	metrics Metrics
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		logging.New("dev", "info").Error("failed to load base config", "err", err)
		os.Exit(1)
	}
	logger := logging.New(baseCfg.Env, baseCfg.LogLevel)
	logger.Info("simulator starting")

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger.Info("config",
		"duration", cfg.Duration,
		"workers", cfg.Workers,
		"therapy_ratio", cfg.TherapyRatio,
		"hot_ratio", cfg.HotRatio,
		"hot_patients", cfg.HotPatients,
	)

	// Load patient IDs from Postgres
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("connect postgres", "err", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		logger.Error("load data pool", "err", err)
		os.Exit(1)
	}

	logger.Info("loaded patients", "count", len(dataPool.Patients))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		TherapyRatio: getFloat("SIM_THERAPY_RATIO", 0.6),
		HotRatio:     getFloat("SIM_HOT_RATIO", 0.5),
		HotPatients:  getInt("SIM_HOT_PATIENTS", 50),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 4000),
		PostgresDSN:  base.PostgresDSN,
	}

	cfg.TherapyRatio = clamp01(cfg.TherapyRatio)
	cfg.HotRatio = clamp01(cfg.HotRatio)

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return errors.New("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return errors.New("SIM_DURATION must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	rows, err := pool.Query(ctx, `
		SELECT id FROM patients ORDER BY created_at LIMIT $1
	`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Patients = append(dataPool.Patients, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}

	if len(dataPool.Patients) == 0 {
		return nil, errors.New("no patients loaded")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation", "duration", s.config.Duration, "workers", s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			patientID := s.pool.Pick(rng, s.config.HotRatio, s.config.HotPatients)
			if rng.Float64() < s.config.TherapyRatio {
				s.doTherapy(ctx, patientID)
			} else {
				s.doAssessment(ctx, patientID)
			}
		}
	}
}

func (s *Simulator) doTherapy(ctx context.Context, patientID uuid.UUID) {
	var body struct {
		Availability map[uuid.UUID][]json.RawMessage `json:"availability"`
	}
	latency, status, ok := s.get(ctx, fmt.Sprintf("%s/patients/%s/availability/therapy", s.config.APIBaseURL, patientID), &body)
	if !ok {
		return
	}
	s.metrics.Therapy.Record(latency, status, countSlots(body.Availability))
}

func (s *Simulator) doAssessment(ctx context.Context, patientID uuid.UUID) {
	var body struct {
		Availability map[uuid.UUID][]json.RawMessage `json:"availability"`
	}
	latency, status, ok := s.get(ctx, fmt.Sprintf("%s/patients/%s/availability/assessment", s.config.APIBaseURL, patientID), &body)
	if !ok {
		return
	}
	s.metrics.Assessment.Record(latency, status, countSlots(body.Availability))
}

// get issues a GET and decodes a 200 body into dst. It reports false when
// the simulation ended mid-request so the sample can be dropped.
func (s *Simulator) get(ctx context.Context, url string, dst any) (time.Duration, int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, false
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return 0, 0, false
		}
		return latency, 0, true
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return latency, 0, true
		}
	}
	return latency, resp.StatusCode, true
}

func countSlots(av map[uuid.UUID][]json.RawMessage) int {
	n := 0
	for _, slots := range av {
		n += len(slots)
	}
	return n
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Therapy availability", &s.metrics.Therapy)
	printOperationReport("Assessment availability", &s.metrics.Assessment)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	notFound := atomic.LoadInt64(&om.NotFound)
	failed := atomic.LoadInt64(&om.Error)
	slots := atomic.LoadInt64(&om.Slots)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if notFound > 0 {
		fmt.Printf("  Not found: %d (%.1f%%)\n", notFound, float64(notFound)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	if success > 0 {
		fmt.Printf("  Slots offered: avg=%.1f\n", float64(slots)/float64(success))
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Microsecond), min.Round(time.Microsecond), max.Round(time.Microsecond),
		p50.Round(time.Microsecond), p95.Round(time.Microsecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func repeat(s string, n int) string {
	return strings.Repeat(s, n)
}
