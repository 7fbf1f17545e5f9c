// Package scheduler runs backend request tasks one at a time, in
// submission order. Serializing here is what keeps slice requests ordered
// against a slow backend while the event loop stays responsive.
package scheduler

import (
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("sliver.scheduler")

// Task is one unit of deferred work.
type Task struct {
	Name    string
	Execute func()
}

// Scheduler owns a buffered task queue drained by a single worker.
type Scheduler struct {
	tasks chan Task
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// New creates a Scheduler with the given queue capacity.
func New(queueSize int) *Scheduler {
	return &Scheduler{
		tasks: make(chan Task, queueSize),
	}
}

// Run starts the worker loop. Call once.
func (s *Scheduler) Run() {
	go func() {
		for task := range s.tasks {
			log.Debugf("executing %s", task.Name)
			task.Execute()
			s.wg.Done()
		}
	}()
}

// Submit enqueues a task. Submission order is execution order. Tasks
// submitted after Stop, or while the queue is full, are dropped; Submit
// never blocks the caller.
func (s *Scheduler) Submit(task Task) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		log.Debugf("dropping %s, scheduler stopped", task.Name)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	select {
	case s.tasks <- task:
	default:
		log.Warningf("dropping %s, queue full", task.Name)
		s.wg.Done()
	}
}

// Stop drains the queue, waits for the worker to finish and shuts it down.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.wg.Wait()
	close(s.tasks)
}
