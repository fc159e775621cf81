package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// Func is the body of a background job.
type Func func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	names  []string
}

func NewScheduler() *Scheduler {
	logger := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add schedules fn under name. An empty spec leaves the job disabled.
func (s *Scheduler) Add(name, spec string, fn Func) error {
	if spec == "" {
		l := log.L()
		l.Info().Str(log.FieldJob, name).Msg("job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.names = append(s.names, name)
	return nil
}

// Jobs returns the names of scheduled jobs.
func (s *Scheduler) Jobs() []string {
	return s.names
}

func (s *Scheduler) Start() {
	s.cron.Start()
	l := log.L()
	l.Info().Strs("jobs", s.names).Msg("job scheduler started")
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		l := log.L()
		l.Warn().Msg("timed out waiting for running jobs")
	}
}

// RunNow executes a job synchronously outside its schedule.
func (s *Scheduler) RunNow(name string, fn Func) error {
	return s.run(name, fn)
}

func (s *Scheduler) run(name string, fn Func) error {
	ctx := log.WithJob(s.ctx, name)
	l := log.Ctx(ctx)

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.RecordJobRun(name, elapsed, err == nil)

	if err != nil {
		l.Error().Err(err).Dur("elapsed", elapsed).Msg("job failed")
		return err
	}
	l.Debug().Dur("elapsed", elapsed).Msg("job finished")
	return nil
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l := log.L()
	withFields(l.Debug(), keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l := log.L()
	withFields(l.Error().Err(err), keysAndValues).Msg("cron: " + msg)
}

func withFields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, keysAndValues[i+1])
	}
	return e
}
