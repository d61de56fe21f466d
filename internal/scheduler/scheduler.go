// Package scheduler drives the periodic rank batch on a cron spec.
package scheduler

import (
	"fmt"
	"log/slog"
	"teamvest/internal/rank"
	"teamvest/lib/sl"

	"github.com/robfig/cron/v3"
)

type Runner interface {
	ProcessAllUsers() (*rank.BatchResult, error)
}

// Notifier pushes a run summary to the ops channel; nil disables it.
type Notifier interface {
	SendMessage(msg string)
}

type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	notifier Notifier
	log      *slog.Logger
}

func New(spec string, runner Runner, notifier Notifier, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		notifier: notifier,
		log:      log.With(sl.Module("scheduler")),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("cron spec %q: %w", spec, err)
	}
	s.log.Info("rank batch scheduled", slog.String("spec", spec))
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// run executes one batch. Retry on transient failure is left to the next
// scheduled tick.
func (s *Scheduler) run() {
	result, err := s.runner.ProcessAllUsers()
	if err != nil {
		s.log.Error("scheduled rank batch failed", sl.Err(err))
		return
	}
	if s.notifier != nil {
		s.notifier.SendMessage(fmt.Sprintf(
			"rank batch done: processed %d, failed %d, %.1fs",
			result.Processed, result.Failed, result.Elapsed.Seconds()))
	}
}
