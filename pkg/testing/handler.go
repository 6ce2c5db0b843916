package testing

import (
	"sync"
	"testing"

	"github.com/go-drift/stagehand/pkg/errors"
)

// CapturedErrors collects engine diagnostics during a test.
type CapturedErrors struct {
	mu     sync.Mutex
	errs   []*errors.EngineError
	panics []*errors.PanicError
}

// CaptureErrors routes the global error handler into the returned
// collector for the duration of the test, restoring the previous
// handler in cleanup.
func CaptureErrors(t *testing.T) *CapturedErrors {
	t.Helper()
	c := &CapturedErrors{}
	prev := errors.SetHandler(c)
	t.Cleanup(func() {
		errors.SetHandler(prev)
	})
	return c
}

// HandleError implements errors.Handler.
func (c *CapturedErrors) HandleError(err *errors.EngineError) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

// HandlePanic implements errors.Handler.
func (c *CapturedErrors) HandlePanic(err *errors.PanicError) {
	c.mu.Lock()
	c.panics = append(c.panics, err)
	c.mu.Unlock()
}

// Errors returns every captured engine error, oldest first.
func (c *CapturedErrors) Errors() []*errors.EngineError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*errors.EngineError, len(c.errs))
	copy(out, c.errs)
	return out
}

// Panics returns every captured panic, oldest first.
func (c *CapturedErrors) Panics() []*errors.PanicError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*errors.PanicError, len(c.panics))
	copy(out, c.panics)
	return out
}

// Count returns how many captured errors have the given kind.
func (c *CapturedErrors) Count(kind errors.ErrorKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.errs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
