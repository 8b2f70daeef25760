package setswapper

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when a job is started while another one is running.
var ErrBusy = errors.New("a run is already in progress")

// Job is a unit of work executed by a Runner.
type Job func(ctx context.Context) error

// Runner executes at most one job at a time in the background.
type Runner struct {
	mu      sync.Mutex
	current *Task
}

// Task is a job started by a Runner.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	err    error
}

// Start runs job on its own goroutine. It fails with ErrBusy if a previous
// job hasn't finished yet.
func (r *Runner) Start(ctx context.Context, job Job) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	r.current = task

	go func() {
		defer cancel()

		err := job(ctx)

		r.mu.Lock()
		task.err = err
		r.current = nil
		r.mu.Unlock()

		close(task.done)
	}()

	return task, nil
}

// Busy reports whether a job is running.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current != nil
}

// Done is closed when the job has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the job has returned and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Cancel asks the job to stop. Pipeline jobs stop before the next entry.
func (t *Task) Cancel() {
	t.cancel()
}
