package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunPreservesOrder(t *testing.T) {
	q := New(10, 0, 0)

	ran := []int{}
	for i := 0; i < 5; i++ {
		i := i
		err := q.Submit(func(ctx context.Context) error {
			ran = append(ran, i)
			return nil
		})
		if err != nil {
			t.Fatalf("Unexpected error submitting job %d: %s", i, err)
		}
	}

	err := q.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if len(ran) != 5 {
		t.Fatalf("Expected 5 jobs to run, but got %d", len(ran))
	}
	for i, got := range ran {
		if got != i {
			t.Fatalf("Expected jobs to run in submission order, but got %v", ran)
		}
	}
}

func TestSubmitRespectsCapacity(t *testing.T) {
	q := New(2, 0, 0)

	noop := func(ctx context.Context) error { return nil }
	if err := q.Submit(noop); err != nil {
		t.Fatal(err)
	}
	if err := q.Submit(noop); err != nil {
		t.Fatal(err)
	}
	if err := q.Submit(noop); err != ErrFull {
		t.Fatalf("Expected ErrFull, but got %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("Expected 2 queued jobs, but got %d", q.Len())
	}
}

func TestRunRetriesFailedJobs(t *testing.T) {
	q := New(10, 0, 3)

	attempts := 0
	err := q.Submit(func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient failure")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// A failed job goes back to the front, ahead of later submissions
	var ranAfter bool
	err = q.Submit(func(ctx context.Context) error {
		if attempts < 3 {
			t.Error("Expected the retried job to finish before later submissions")
		}
		ranAfter = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = q.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if attempts != 3 {
		t.Fatalf("Expected 3 attempts, but got %d", attempts)
	}
	if !ranAfter {
		t.Fatal("Expected the second job to run as well")
	}
}

func TestRunDropsJobPastRetryCap(t *testing.T) {
	q := New(10, 0, 1)

	attempts := 0
	err := q.Submit(func(ctx context.Context) error {
		attempts++
		return errors.New("permanent failure")
	})
	if err != nil {
		t.Fatal(err)
	}

	err = q.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected a dropped job to not fail the run, but got %s", err)
	}
	// Initial attempt plus one retry
	if attempts != 2 {
		t.Fatalf("Expected 2 attempts, but got %d", attempts)
	}
	if q.Len() != 0 {
		t.Fatalf("Expected an empty queue, but got %d jobs", q.Len())
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	q := New(10, time.Hour, 0)

	ran := 0
	for i := 0; i < 2; i++ {
		if err := q.Submit(func(ctx context.Context) error {
			ran++
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Give the first job a chance to run, then cancel during the pacing wait
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := q.Run(ctx)
	if err != context.Canceled {
		t.Fatalf("Expected context.Canceled, but got %v", err)
	}
	if ran != 1 {
		t.Fatalf("Expected only the first job to run, but got %d", ran)
	}
}
