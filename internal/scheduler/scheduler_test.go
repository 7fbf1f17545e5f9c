package scheduler_test

import (
	"testing"
	"time"

	"sliver/internal/scheduler"
)

func TestSchedulerRunsTasksInOrder(t *testing.T) {
	s := scheduler.New(10)
	s.Run()

	results := make(chan int, 10)
	for i := 0; i < 5; i++ {
		i := i
		s.Submit(scheduler.Task{
			Name: "ordered",
			Execute: func() {
				time.Sleep(10 * time.Millisecond) // simulate backend latency
				results <- i
			},
		})
	}

	s.Stop()

	for want := 0; want < 5; want++ {
		select {
		case got := <-results:
			if got != want {
				t.Fatalf("task %d finished out of order (want %d)", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %d", want)
		}
	}
}

func TestSchedulerStopDrainsQueue(t *testing.T) {
	s := scheduler.New(10)
	s.Run()

	executed := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		s.Submit(scheduler.Task{
			Name:    "work",
			Execute: func() { executed <- struct{}{} },
		})
	}

	s.Stop()

	if got := len(executed); got != 5 {
		t.Fatalf("executed %d tasks before Stop returned, want 5", got)
	}
}

func TestSchedulerSubmitNeverBlocksOnFullQueue(t *testing.T) {
	s := scheduler.New(2)
	// The worker is not running yet, so the third submit finds the queue
	// full and must drop instead of stalling the caller.

	executed := make(chan string, 3)
	done := make(chan struct{})
	go func() {
		for _, name := range []string{"first", "second", "overflow"} {
			name := name
			s.Submit(scheduler.Task{
				Name:    name,
				Execute: func() { executed <- name },
			})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	s.Run()
	s.Stop()

	if got := len(executed); got != 2 {
		t.Fatalf("executed %d tasks, want 2 with the overflow dropped", got)
	}
}

func TestSchedulerDropsTasksAfterStop(t *testing.T) {
	s := scheduler.New(1)
	s.Run()
	s.Stop()

	// Must neither panic nor block.
	done := make(chan struct{})
	go func() {
		s.Submit(scheduler.Task{Name: "late", Execute: func() {}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit after Stop blocked")
	}
}
