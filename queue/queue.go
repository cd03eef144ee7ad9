package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// Job is a unit of work processed by the queue
type Job func(ctx context.Context) error

// Error returned by Submit when the queue is at capacity
var ErrFull = errors.New("queue is full")

// Queue is a bounded work queue that runs jobs one at a time, spacing them out
// by a minimum interval to stay under downstream rate limits
// A failed job is put back at the front of the queue and retried after an
// exponential backoff delay, up to a per-job retry cap
type Queue struct {
	mu         sync.Mutex
	jobs       []*jobEntry
	capacity   int
	interval   time.Duration
	maxRetries int
}

type jobEntry struct {
	run     Job
	retries int
	delay   backoff.BackOff
}

// New creates a queue holding up to capacity jobs, leaving at least interval
// between consecutive jobs and retrying each failed job up to maxRetries times
func New(capacity int, interval time.Duration, maxRetries int) *Queue {
	return &Queue{
		capacity:   capacity,
		interval:   interval,
		maxRetries: maxRetries,
	}
}

// Submit adds a job to the back of the queue
func (q *Queue) Submit(j Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) >= q.capacity {
		return ErrFull
	}
	q.jobs = append(q.jobs, &jobEntry{
		run:   j,
		delay: backoff.NewExponentialBackOff(),
	})
	return nil
}

// Len returns the number of queued jobs
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) pop() *jobEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil
	}
	entry := q.jobs[0]
	q.jobs = q.jobs[1:]
	return entry
}

func (q *Queue) pushFront(entry *jobEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append([]*jobEntry{entry}, q.jobs...)
}

// Run drains the queue sequentially
// It returns when the queue is empty or the context is canceled; jobs that
// keep failing past the retry cap are dropped with a log line
func (q *Queue) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := q.pop()
		if entry == nil {
			return nil
		}

		err := entry.run(ctx)
		if err != nil {
			entry.retries++
			if entry.retries > q.maxRetries {
				log.WithError(err).Warnf("Dropping job after %d attempts", entry.retries)
			} else {
				wait := entry.delay.NextBackOff()
				log.WithError(err).Debugf("Re-queueing job after %s delay", wait)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
				q.pushFront(entry)
				continue
			}
		}

		// Pace the next job
		if q.Len() > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(q.interval):
			}
		}
	}
}
