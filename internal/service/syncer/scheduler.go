package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/clock"
	"go.uber.org/zap"
)

// DefaultInterval is the time between the starts of two scheduled cycles.
const DefaultInterval = time.Minute

// Scheduler runs one sync cycle immediately and then one per interval. Cycles never overlap;
// a cycle that overruns the interval is followed by the next one right away.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	sleep    func(context.Context, time.Duration) error
	now      func() time.Time
	logger   *zap.Logger

	cycleMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler builds a Scheduler. A non-positive interval uses DefaultInterval.
func NewScheduler(runner CycleRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		sleep:    clock.SleepWithContext,
		now:      time.Now,
		logger:   logger,
	}
}

// Run blocks until ctx is canceled. Cycle failures are logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		started := s.now()
		err := s.RunOnce(ctx)
		wait := clock.Remaining(started, s.interval, s.now())
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("sync cycle failed", zap.Error(err), zap.Duration("next_in", wait))
		}
		if err := s.sleep(ctx, wait); err != nil {
			return nil
		}
	}
}

// Start runs the loop in the background until Stop is called or ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		_ = s.Run(ctx)
	}(s.done)
}

// Stop cancels the loop and waits for the in-flight cycle to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce runs a single cycle, waiting for any cycle already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	started := time.Now()
	err := s.runner.RunCycle(ctx)
	s.logger.Debug("sync cycle finished", zap.Duration("took", time.Since(started)), zap.Error(err))
	return err
}
