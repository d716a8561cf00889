// Package workerpool implements a bounded-queue worker pool: a fixed
// number of goroutines drain a fixed-capacity job queue, and producers
// block when the queue is full rather than rejecting work. The size
// and backpressure behavior mirror the reference thread pool's
// num*num queue sizing and condition-variable wait-for-space loop;
// Go's buffered channel send-when-full gives the same blocking for
// free, with no mutex or condition variable required.
package workerpool

import (
	"sync"

	"github.com/coldforge/originhttpd/internal/metrics"
)

// Job is a unit of work executed by a pool worker.
type Job func()

// Pool is a fixed-size collection of goroutines draining a bounded job
// queue.
type Pool struct {
	jobQueue chan Job
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a pool with numThreads workers and a queue capacity of
// numThreads*numThreads, following the reference pool's sizing. A
// numThreads <= 0 is normalized to 1.
func New(numThreads int) *Pool {
	if numThreads <= 0 {
		numThreads = 1
	}

	p := &Pool{
		jobQueue: make(chan Job, numThreads*numThreads),
		stopCh:   make(chan struct{}),
	}

	p.wg.Add(numThreads)
	for i := 0; i < numThreads; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	run := func(job Job) {
		metrics.ActiveWorkersGauge.Inc()
		defer metrics.ActiveWorkersGauge.Dec()
		job()
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			run(job)
		case <-p.stopCh:
			// Drain whatever is already queued before exiting, mirroring
			// tpool_destroy's behavior of freeing only the still-pending
			// work rather than discarding in-flight jobs.
			for {
				select {
				case job, ok := <-p.jobQueue:
					if !ok {
						return
					}
					run(job)
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues job, blocking while the queue is full. It returns
// false without enqueueing if the pool has been stopped. Unlike the
// reference pool, Submit never allocates a linked-list node: the job
// closure travels through the channel directly.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.stopCh:
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		metrics.WorkerPoolQueueDepthGauge.Set(float64(len(p.jobQueue)))
		return true
	case <-p.stopCh:
		return false
	}
}

// Stop signals every worker to exit once the queue drains and blocks
// until they do. It is idempotent. The job channel itself is never
// closed, since a Submit racing a concurrent close would panic.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
}

// QueueDepth reports the number of jobs currently waiting in the queue.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}
