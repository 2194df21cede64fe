// Package scheduler drives the report generator on a fixed cadence. One
// goroutine processes all groups sequentially, so no group can have two
// generation runs in flight at once.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/taskhub-dev/taskhub/internal/reports"
)

type Scheduler struct {
	generator *reports.Generator
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewScheduler(generator *reports.Generator, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		generator: generator,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start runs the poll loop until Stop. The first tick fires immediately so a
// restart does not wait a full interval to catch up overdue groups.
func (s *Scheduler) Start() {
	log.Printf("Starting report scheduler, poll interval %v", s.interval)

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.generator.RunOnce(s.ctx)

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.generator.RunOnce(s.ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping report scheduler...")
	s.cancel()
	<-s.done
	log.Println("Report scheduler stopped")
}
