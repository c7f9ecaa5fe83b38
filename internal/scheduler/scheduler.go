// Package scheduler runs registered background jobs on fixed intervals. Jobs
// are self-healing sweeps: each tick re-derives work from current state, so a
// missed or failed run is corrected by the next one.
package scheduler

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

type job struct {
	name  string
	every time.Duration
	run   func(ctx context.Context) error
}

// Scheduler is an explicit job registry. Register everything first, then
// Start; one goroutine per job ticks until the context is cancelled.
type Scheduler struct {
	jobs []job
	wg   sync.WaitGroup
	log  *log.Logger
}

func New() *Scheduler {
	return &Scheduler{
		log: log.New(os.Stdout, "[scheduler] ", log.LstdFlags),
	}
}

// Register adds a job to the registry. Must be called before Start.
func (s *Scheduler) Register(name string, every time.Duration, run func(ctx context.Context) error) {
	s.jobs = append(s.jobs, job{name: name, every: every, run: run})
}

// Start launches every registered job. It returns immediately; call Wait to
// block until all job goroutines exit after ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, j)
		s.log.Printf("job %s registered, every %s", j.name, j.every)
	}
}

// Wait blocks until all job goroutines have stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := j.run(ctx); err != nil {
				s.log.Printf("job %s failed after %s: %v", j.name, time.Since(start).Round(time.Millisecond), err)
			}
		}
	}
}
