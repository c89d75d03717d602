package navigation

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/internal"
)

// BackGuard intercepts a physical back signal. It vetoes by calling
// Cancel on cc, and may resolve later by taking a deferral from cc.
// Returning an error aborts the walk and is reported to the trigger's caller.
type BackGuard func(ctx context.Context, cc *CancelContext) error

// GuardHandle identifies a registered guard for removal.
type GuardHandle uint64

// BackNavigator is what a BackGuardChain hands an unvetoed signal to.
// *Coordinator implements it.
type BackNavigator interface {
	GoBack(ctx context.Context) error
}

// backWalker is implemented by navigators that can stay claimed for a whole
// guard walk and then go back without releasing the claim.
type backWalker interface {
	beginWalk() error
	goBackClaimed(ctx context.Context) error
	endWalk()
}

type guardEntry struct {
	handle GuardHandle
	fn     BackGuard
}

// BackGuardChain lets independent features veto a physical back signal before
// it reaches the coordinator. Guards are consulted newest first, one at a
// time: each must resolve before the next one observes state.
//
// Unlike a page's navigating-from hook, which only the outgoing page sees, a
// back guard sees every back signal regardless of which page is current.
// Guards are not tied to any page's lifetime; whoever adds one removes it.
type BackGuardChain struct {
	target BackNavigator
	logger *slog.Logger

	mu      sync.Mutex
	guards  []guardEntry
	next    atomic.Uint64
	walking atomic.Bool
}

// NewBackGuardChain creates a chain that forwards unvetoed signals to target.
func NewBackGuardChain(target BackNavigator) *BackGuardChain {
	return &BackGuardChain{
		target: target,
		logger: internal.GetInternalLogger(),
	}
}

// AddBackGuard registers fn and returns the handle that removes it.
// Safe to call from inside a running guard; the running walk does not see it.
func (b *BackGuardChain) AddBackGuard(fn BackGuard) GuardHandle {
	h := GuardHandle(b.next.Inc())
	b.mu.Lock()
	b.guards = append(b.guards, guardEntry{handle: h, fn: fn})
	b.mu.Unlock()
	return h
}

// RemoveBackGuard unregisters the guard behind h. Returns false if h is not
// registered. Safe to call from inside a running guard; the running walk
// still consults the snapshot it started with.
func (b *BackGuardChain) RemoveBackGuard(h GuardHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range b.guards {
		if g.handle == h {
			b.guards = append(b.guards[:i:i], b.guards[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered guards.
func (b *BackGuardChain) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.guards)
}

// Trigger handles one physical back signal. It returns ErrCancelled if a
// guard vetoed, a *GuardError if one failed, and otherwise whatever the
// target's GoBack returns. A signal arriving while another walk or a
// transition is in flight is refused with ErrBusy. When the target is a
// *Coordinator it stays busy for the whole walk, so guards never evaluate
// against a page that changes under them.
func (b *BackGuardChain) Trigger(ctx context.Context) error {
	if !b.walking.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer b.walking.Store(false)

	handOff := b.target.GoBack
	if walker, ok := b.target.(backWalker); ok {
		if err := walker.beginWalk(); err != nil {
			return err
		}
		release := true
		defer func() {
			if release {
				walker.endWalk()
			}
		}()
		handOff = func(ctx context.Context) error {
			release = false
			return walker.goBackClaimed(ctx)
		}
	} else if p, ok := b.target.(interface{ Phase() Phase }); ok && p.Phase() != PhaseIdle {
		return ErrBusy
	}

	walk := b.snapshot()
	for walk.next() {
		if err := walk.run(ctx); err != nil {
			return err
		}
		if walk.cc.Cancelled() {
			b.logger.Debug("back signal vetoed", "guard", walk.current().handle, "position", walk.pos)
			return ErrCancelled
		}
	}
	return handOff(ctx)
}

// snapshot freezes the guard list, newest first.
func (b *BackGuardChain) snapshot() *guardWalk {
	b.mu.Lock()
	defer b.mu.Unlock()
	guards := make([]guardEntry, len(b.guards))
	for i, g := range b.guards {
		guards[len(b.guards)-1-i] = g
	}
	return &guardWalk{guards: guards, pos: -1, cc: newCancelContext()}
}

// guardWalk is an explicit iterator over one trigger's guard snapshot, sharing
// a single cancel context across every step.
type guardWalk struct {
	guards []guardEntry
	pos    int
	cc     *CancelContext
}

func (w *guardWalk) next() bool {
	if w.pos+1 >= len(w.guards) {
		return false
	}
	w.pos++
	return true
}

func (w *guardWalk) current() guardEntry {
	return w.guards[w.pos]
}

// run invokes the current guard and waits until it has resolved.
func (w *guardWalk) run(ctx context.Context) error {
	if err := w.current().fn(ctx, w.cc); err != nil {
		return &GuardError{Op: "back_guard", Err: err}
	}
	return w.cc.wait(ctx)
}
