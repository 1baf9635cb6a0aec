// Package jobs wires lifecycle webhook events into the Lifecycle
// Coordinator's index operations, run by a fixed-size worker pool.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/rag-index-manager/internal/core"
)

// dispatcher implements core.JobDispatcher and manages a pool of worker
// goroutines for processing lifecycle events against RAG indexes.
type dispatcher struct {
	job        core.Job
	jobQueue   chan *core.LifecycleEvent
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.LifecycleEvent, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := 0; i < d.maxWorkers; i++ {
		d.wg.Add(1)
		go func(workerID int) {
			defer d.wg.Done()
			d.logger.Info("starting lifecycle worker", "id", workerID)
			for event := range d.jobQueue {
				d.logger.Info("worker processing job", "worker_id", workerID, "repo", event.RepoFullName, "pr", event.PRNumber)
				if err := d.job.Run(context.Background(), event); err != nil {
					d.logger.Error("lifecycle job failed", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
				}
			}
			d.logger.Info("shutting down lifecycle worker", "id", workerID)
		}(i)
	}
}

// Dispatch queues a lifecycle event for processing by a worker.
// Returns an error if the queue is full.
func (d *dispatcher) Dispatch(ctx context.Context, event *core.LifecycleEvent) error {
	d.logger.InfoContext(ctx, "queuing lifecycle job", "repo", event.RepoFullName, "pr", event.PRNumber, "action", event.Action)
	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new lifecycle job")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all lifecycle jobs have finished")
}
