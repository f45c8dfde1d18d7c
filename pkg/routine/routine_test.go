package routine

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunner_Go(t *testing.T) {
	runner := New(zerolog.Nop())

	var executed atomic.Bool
	runner.Go(func() {
		executed.Store(true)
	})

	runner.Wait()

	if !executed.Load() {
		t.Error("expected function to be executed")
	}
}

func TestRunner_Go_WithPanic(t *testing.T) {
	runner := New(zerolog.Nop())

	var beforePanic, afterPanic atomic.Bool
	runner.Go(func() {
		beforePanic.Store(true)
		panic("test panic")
	})

	// runner still works after a panic
	runner.Go(func() {
		afterPanic.Store(true)
	})

	runner.Wait()

	if !beforePanic.Load() {
		t.Error("expected code before panic to execute")
	}
	if !afterPanic.Load() {
		t.Error("expected goroutine after panic to execute")
	}
}

func TestRunner_GoNamed_LogsPanic(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	writer := &lockedWriter{buf: &buf, mu: &mu}
	runner := New(zerolog.New(writer))

	runner.GoNamed("panic-routine", func() {
		panic("named panic")
	})
	runner.Wait()

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(buf.String(), `"routine":"panic-routine"`) {
		t.Errorf("expected routine name in log, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "named panic") {
		t.Errorf("expected panic value in log, got %s", buf.String())
	}
}

func TestRunner_GoCatch(t *testing.T) {
	runner := New(zerolog.Nop())

	var caught error
	runner.GoCatch("catch-routine", func() {
		panic("caught panic")
	}, func(err error) {
		caught = err
	})
	runner.Wait()

	if !errors.Is(caught, ErrPanicRecovered) {
		t.Fatalf("expected ErrPanicRecovered, got %v", caught)
	}
	if !strings.Contains(caught.Error(), "caught panic") {
		t.Errorf("expected panic value in error, got %v", caught)
	}
}

func TestRunner_GoCatch_NoPanic(t *testing.T) {
	runner := New(zerolog.Nop())

	var called atomic.Bool
	runner.GoCatch("quiet-routine", func() {}, func(err error) {
		called.Store(true)
	})
	runner.Wait()

	if called.Load() {
		t.Error("expected catch not to be called")
	}
}

func TestRunner_Wait_MultipleGoroutines(t *testing.T) {
	runner := New(zerolog.Nop())

	var counter atomic.Int32
	numGoroutines := 100

	for i := 0; i < numGoroutines; i++ {
		runner.Go(func() {
			time.Sleep(time.Millisecond)
			counter.Add(1)
		})
	}

	runner.Wait()

	if counter.Load() != int32(numGoroutines) {
		t.Errorf("expected %d executions, got %d", numGoroutines, counter.Load())
	}
}

type lockedWriter struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
