package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultSchedule = "@every 5m"

// cronLogger routes cron's logs to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("Cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg("Cron: " + msg)
}

// Scheduler runs every registered trigger on its own cron schedule. Runs of
// the same trigger never overlap; a tick that fires while the previous run
// is still going is skipped.
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron

	mtx     sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler(runner *Runner) *Scheduler {
	logger := cronLogger{}

	return &Scheduler{
		runner: runner,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		entries: map[string]cron.EntryID{},
	}
}

// Add enables the trigger and schedules its runs. Adding a trigger that is
// already scheduled replaces its entry.
func (s *Scheduler) Add(ctx context.Context, trigger Trigger) error {
	schedule := trigger.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid schedule %q for trigger %s: %w", schedule, trigger.ID, err)
	}

	if _, err := s.runner.Enable(ctx, trigger); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if entryID, ok := s.entries[trigger.ID]; ok {
		s.cron.Remove(entryID)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.runner.Run(ctx, trigger); err != nil {
			log.Error().Err(err).Str("trigger_id", trigger.ID).Msg("Trigger run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule trigger %s: %w", trigger.ID, err)
	}

	s.entries[trigger.ID] = entryID

	return nil
}

// Remove unschedules the trigger. The watermark is kept; use
// Runner.Disable to reset it.
func (s *Scheduler) Remove(triggerID string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entryID, ok := s.entries[triggerID]
	if !ok {
		return
	}

	s.cron.Remove(entryID)
	delete(s.entries, triggerID)
}

func (s *Scheduler) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.entries)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs or ctx, whichever comes
// first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
