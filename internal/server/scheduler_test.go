package server

import (
	"testing"

	"github.com/priyanshu2307/Newschat/ingest"
)

func TestNewSchedulerRejectsBadCron(t *testing.T) {
	t.Parallel()
	p := ingest.NewPipeline(stubEmbedder{}, nil, nil, nil, "", 500)

	if _, err := NewScheduler(p, "not a cron spec", "https://example.com/feed"); err == nil {
		t.Fatal("invalid cron spec accepted")
	}
	if _, err := NewScheduler(p, "*/5 * * * *", "https://example.com/feed"); err != nil {
		t.Fatalf("valid cron spec rejected: %v", err)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()
	p := ingest.NewPipeline(stubEmbedder{}, nil, nil, nil, "", 500)
	s, err := NewScheduler(p, "0 0 1 1 *", "https://example.com/feed")
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}
