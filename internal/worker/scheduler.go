package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SummarySource builds the text of the daily summary email.
type SummarySource interface {
	DailySummary(ctx context.Context) (subject, body string, err error)
}

// Enqueuer is satisfied by *Dispatcher.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// Scheduler runs the daily summary on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	source SummarySource
	queue  Enqueuer
	to     string
}

// NewScheduler registers the summary job under spec (standard 5-field cron).
func NewScheduler(spec string, source SummarySource, queue Enqueuer, to string) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		source: source,
		queue:  queue,
		to:     to,
	}
	if _, err := s.cron.AddFunc(spec, s.sendDailySummary); err != nil {
		return nil, fmt.Errorf("schedule daily summary %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Info().Msg("scheduler: starting")
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	log.Info().Msg("scheduler: stopping")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("scheduler: daily summary failed")
	}
}

// RunOnce builds the summary and queues it for delivery.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	subject, body, err := s.source.DailySummary(ctx)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	if err := s.queue.EnqueueEmail(ctx, EmailJobPayload{ToEmail: s.to, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("enqueue summary: %w", err)
	}
	log.Info().Str("to", s.to).Msg("scheduler: daily summary queued")
	return nil
}
