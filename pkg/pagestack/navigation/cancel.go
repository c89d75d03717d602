package navigation

import (
	"context"
	"sync"
)

// CancelContext is the mutable veto flag shared by a guard walk. A guard that
// cannot decide before returning takes a Deferral and completes it later; the
// walk does not advance until every deferral taken on the context completes.
type CancelContext struct {
	mu       sync.Mutex
	cancel   bool
	pending  int
	resolved chan struct{}
}

func newCancelContext() *CancelContext {
	return &CancelContext{}
}

// Cancel vetoes the operation.
func (c *CancelContext) Cancel() {
	c.SetCancel(true)
}

// SetCancel sets the veto flag. Only the value at resolution time counts.
func (c *CancelContext) SetCancel(cancel bool) {
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

// Cancelled reports the current value of the veto flag.
func (c *CancelContext) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel
}

// Defer marks the outcome as signaled later. The caller must call Complete on
// the returned Deferral exactly once.
func (c *CancelContext) Defer() *Deferral {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == 0 {
		c.resolved = make(chan struct{})
	}
	c.pending++
	return &Deferral{ctx: c}
}

func (c *CancelContext) complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == 0 {
		return
	}
	c.pending--
	if c.pending == 0 {
		close(c.resolved)
	}
}

// wait blocks until all outstanding deferrals complete or ctx is done.
func (c *CancelContext) wait(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == 0 {
		c.mu.Unlock()
		return nil
	}
	resolved := c.resolved
	c.mu.Unlock()

	select {
	case <-resolved:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deferral is a pending guard outcome.
type Deferral struct {
	once sync.Once
	ctx  *CancelContext
}

// Complete resolves the deferral. Extra calls are ignored.
func (d *Deferral) Complete() {
	d.once.Do(d.ctx.complete)
}
