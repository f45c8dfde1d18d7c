// Package routine runs goroutines with panic recovery.
//
// A panicking network fetch must not take the whole process down,
// nor leave its caller waiting for a callback that never comes.
package routine

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Runner starts goroutines and keeps track of them until they complete.
type Runner struct {
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// New creates a new Runner logging recovered panics to the given logger.
func New(logger zerolog.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Go executes a function in a new goroutine with panic recovery
func (r *Runner) Go(fn func()) {
	r.GoNamed("", fn)
}

// GoNamed executes a named function in a new goroutine with panic recovery.
// The name is used for logging purposes.
func (r *Runner) GoNamed(name string, fn func()) {
	r.GoCatch(name, fn, nil)
}

// GoCatch executes a named function in a new goroutine.
// If the function panics, catch is called with an error wrapping ErrPanicRecovered.
func (r *Runner) GoCatch(name string, fn func(), catch func(error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.recover(name, catch)
		fn()
	}()
}

// Wait waits for all goroutines started by this runner to complete
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) recover(name string, catch func(error)) {
	rec := recover()
	if rec == nil {
		return
	}
	event := r.logger.Error().
		Interface("panic", rec).
		Str("stack", string(debug.Stack()))
	if name != "" {
		event = event.Str("routine", name)
	}
	event.Msg("Goroutine panicked")
	if catch != nil {
		catch(ErrPanic(rec))
	}
}
