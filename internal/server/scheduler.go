package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/priyanshu2307/Newschat/ingest"
)

// Scheduler refreshes the index from a configured feed on a cron schedule.
type Scheduler struct {
	pipeline *ingest.Pipeline
	expr     *cronexpr.Expression
	feedURL  string
	stop     chan struct{}
	logger   *log.Logger
}

// NewScheduler parses the cron spec; an invalid spec fails startup.
func NewScheduler(pipeline *ingest.Pipeline, cronSpec, feedURL string) (*Scheduler, error) {
	expr, err := cronexpr.Parse(cronSpec)
	if err != nil {
		return nil, fmt.Errorf("parsing refresh cron %q: %w", cronSpec, err)
	}
	return &Scheduler{
		pipeline: pipeline,
		expr:     expr,
		feedURL:  feedURL,
		stop:     make(chan struct{}),
		logger:   log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
	}, nil
}

// Start fires feed ingestion at each cron occurrence until Stop.
func (s *Scheduler) Start() {
	go func() {
		for {
			next := s.expr.Next(time.Now())
			if next.IsZero() {
				s.logger.Printf("no future occurrence for refresh cron, scheduler exiting")
				return
			}
			timer := time.NewTimer(time.Until(next))
			select {
			case <-s.stop:
				timer.Stop()
				return
			case <-timer.C:
				s.logger.Printf("scheduled refresh from %s", s.feedURL)
				s.pipeline.RunBackground("rss", func(ctx context.Context) (int, error) {
					return s.pipeline.FromFeed(ctx, s.feedURL)
				})
			}
		}
	}()
}

// Stop halts future occurrences; an in-flight run finishes on its own.
func (s *Scheduler) Stop() {
	close(s.stop)
}
