package task

import (
	"context"
	"github.com/pkg/errors"
	"sync"
)

// Task is a future for an asynchronously running function.
type Task struct {
	ctx  context.Context
	fn   func(context.Context) (any, error)
	once sync.Once
	done chan struct{}

	result any
	err    error
}

// New returns a new Task which runs fn with ctx once started.
func New(ctx context.Context, fn func(context.Context) (any, error)) *Task {
	return &Task{
		ctx:  ctx,
		fn:   fn,
		done: make(chan struct{}),
	}
}

// Start runs the task's function in a new goroutine and calls callback from there once it has finished.
// Only the first call has an effect.
func (t *Task) Start(callback func(*Task)) {
	t.once.Do(func() {
		go func() {
			t.run()
			close(t.done)

			if callback != nil {
				callback(t)
			}
		}()
	})
}

// Done returns a channel that's closed once the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the task has finished and returns its result.
func (t *Task) Result() (any, error) {
	<-t.done

	return t.result, t.err
}

func (t *Task) run() {
	defer func() {
		if r := recover(); r != nil {
			t.err = errors.Errorf("task panicked: %v", r)
		}
	}()

	t.result, t.err = t.fn(t.ctx)
}
