package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Fetcher refreshes telemetry for every configured location.
type Fetcher interface {
	FetchAll(ctx context.Context) error
}

type Scheduler struct {
	fetcher      Fetcher
	logger       *zap.Logger
	cron         *cron.Cron
	interval     time.Duration
	fetchTimeout time.Duration
	entryID      cron.EntryID
	mu           sync.Mutex
	jobs         sync.WaitGroup
	started      bool
	stopped      bool
	inFlight     bool
	lastRun      time.Time
	lastDuration time.Duration
	lastError    error
	runs         int
	skipped      int
}

func NewScheduler(fetcher Fetcher, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		fetcher:      fetcher,
		logger:       logger,
		cron:         cron.New(),
		interval:     interval,
		fetchTimeout: 60 * time.Second,
	}
}

// Start registers the polling job and runs one fetch immediately.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.runFetch("cron") })
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule polling: %w", err)
	}
	s.entryID = id
	s.started = true
	s.spawn("startup")
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Time("next_run", s.nextRun()))

	return nil
}

// spawn runs a fetch outside the cron loop. Callers hold s.mu.
func (s *Scheduler) spawn(trigger string) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.runFetch(trigger)
	}()
}

// runFetch polls once unless a previous poll is still in flight.
func (s *Scheduler) runFetch(trigger string) {
	s.mu.Lock()
	if s.inFlight {
		s.skipped++
		s.mu.Unlock()
		s.logger.Debug("Skipping fetch, previous run still in progress",
			zap.String("trigger", trigger))
		return
	}
	s.inFlight = true
	s.lastRun = time.Now()
	s.mu.Unlock()

	startTime := time.Now()
	s.logger.Info("Starting telemetry fetch",
		zap.String("trigger", trigger),
		zap.Time("start_time", startTime))

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	err := s.fetcher.FetchAll(ctx)
	duration := time.Since(startTime)

	s.mu.Lock()
	s.inFlight = false
	s.runs++
	s.lastDuration = duration
	s.lastError = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Telemetry fetch failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return
	}
	s.logger.Info("Telemetry fetch completed",
		zap.Duration("duration", duration))
}

// Stop halts the cron loop and waits for every running fetch to finish,
// including startup and manual ones. A stopped scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasStarted := s.started
	s.started = false
	s.stopped = true
	s.mu.Unlock()

	if wasStarted {
		s.logger.Info("Stopping scheduler")
		<-s.cron.Stop().Done()
	}
	s.jobs.Wait()
}

// ForceRun triggers a fetch in the background. It reports false when a
// fetch is already running or the scheduler has been stopped.
func (s *Scheduler) ForceRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight || s.stopped {
		return false
	}

	s.logger.Info("Manually triggering telemetry fetch")
	s.spawn("manual")
	return true
}

func (s *Scheduler) nextRun() time.Time {
	entry := s.cron.Entry(s.entryID)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(time.Now())
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":       s.started,
		"in_flight":     s.inFlight,
		"interval":      s.interval.String(),
		"last_run":      s.lastRun,
		"last_duration": s.lastDuration.String(),
		"runs":          s.runs,
		"skipped":       s.skipped,
	}
	if s.started {
		status["next_run"] = s.nextRun()
	}
	if s.lastError != nil {
		status["last_error"] = s.lastError.Error()
	}
	return status
}
