package pagestack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/input"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/internal"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/locale"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/navigation"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/storage"
)

// Host runs one navigation stack.
type Host struct {
	id        string
	registry  *navigation.Registry
	nav       *navigation.Coordinator
	back      *navigation.BackGuardChain
	store     storage.Storage
	ownsStore bool
	sdl       *input.SDLSource
	ui        *input.Channel
	sources   []input.Source
	tr        *locale.Translator
	logger    *slog.Logger
	onOutcome func(input.Signal, error)

	dispatching atomic.Bool
	dropped     atomic.Uint64
}

// New creates a host. The stack starts empty: call Resume to pick up a
// suspended session, or NavigateTo to open the first page.
func New(opts Options) (*Host, error) {
	setupLogging(opts)

	tr, err := locale.New(opts.Language)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	h := &Host{
		id:        opts.HostID,
		registry:  opts.Registry,
		store:     opts.Storage,
		sdl:       opts.SDL,
		ui:        input.NewChannel("ui"),
		tr:        tr,
		logger:    internal.GetInternalLogger(),
		onOutcome: opts.OnOutcome,
	}
	if h.id == "" {
		h.id = DefaultHostID()
	}
	if h.registry == nil {
		h.registry = navigation.NewRegistry()
	}
	if h.store == nil {
		s, err := storage.Open(opts.SessionBackend, sessionPath(opts.SessionBackend, opts.SessionPath))
		if err != nil {
			return nil, fmt.Errorf("open session storage: %w", err)
		}
		h.store = s
		h.ownsStore = true
	}
	h.sources = append([]input.Source{h.ui}, opts.Sources...)

	navOpts := []navigation.Option{navigation.WithLogger(h.logger)}
	if opts.Presenter != nil {
		navOpts = append(navOpts, navigation.WithPresenter(opts.Presenter))
	}
	h.nav = navigation.NewCoordinator(h.registry, navOpts...)
	h.back = navigation.NewBackGuardChain(h.nav)

	h.nav.OnNavigated(func(e navigation.NavigatedEvent) {
		h.logger.Debug("Navigated",
			"host", h.id,
			"page", e.TypeKey,
			"mode", e.Mode.String(),
			"index", e.Index)
	})

	h.logger.Debug("Host created", "host", h.id, "sources", len(h.sources))
	return h, nil
}

// ID returns the key the host's session is stored under.
func (h *Host) ID() string {
	return h.id
}

// Register adds a page type. It returns the host for chaining.
func (h *Host) Register(key navigation.TypeKey, factory navigation.Factory, opts ...navigation.PageOption) *Host {
	h.registry.Register(key, factory, opts...)
	return h
}

// Navigator returns the coordinator for direct access to the stack.
func (h *Host) Navigator() *navigation.Coordinator {
	return h.nav
}

// BackGuards returns the chain physical back signals pass through.
func (h *Host) BackGuards() *navigation.BackGuardChain {
	return h.back
}

// Translator returns the message catalog for the configured language.
func (h *Host) Translator() *locale.Translator {
	return h.tr
}

// NavigateTo opens a new page. See navigation.Coordinator.NavigateTo.
func (h *Host) NavigateTo(ctx context.Context, key navigation.TypeKey, parameter any) error {
	return h.nav.NavigateTo(ctx, key, parameter)
}

// AddBackGuard registers a guard that sees back signals before the stack.
func (h *Host) AddBackGuard(fn navigation.BackGuard) navigation.GuardHandle {
	return h.back.AddBackGuard(fn)
}

// RemoveBackGuard unregisters a guard.
func (h *Host) RemoveBackGuard(handle navigation.GuardHandle) bool {
	return h.back.RemoveBackGuard(handle)
}

// Back queues a back signal from application code, such as an on-screen
// back arrow. It is handled by Run like a hardware signal. It returns false
// when a signal is already queued.
func (h *Host) Back() bool {
	return h.ui.Back()
}

// Describe renders err in the host's language.
func (h *Host) Describe(err error) string {
	return h.tr.Describe(err)
}

// Dropped returns how many signals arrived while another was being handled.
func (h *Host) Dropped() uint64 {
	return h.dropped.Load()
}

// Dispatch runs one back signal through the guard chain and, unless vetoed,
// the stack. Run calls it for every accepted signal.
func (h *Host) Dispatch(ctx context.Context, sig input.Signal) error {
	err := h.back.Trigger(ctx)

	switch {
	case err == nil:
		h.logger.Debug("Back handled", "source", sig.Source)
	case navigation.IsCancelled(err):
		h.logger.Debug("Back vetoed", "source", sig.Source)
	case errors.Is(err, navigation.ErrUnavailable), errors.Is(err, navigation.ErrBusy):
		h.logger.Debug("Back ignored", "source", sig.Source, "reason", h.tr.Describe(err))
	default:
		h.logger.Error("Back failed", "source", sig.Source, "message", h.tr.Describe(err), "error", err)
	}

	if h.onOutcome != nil {
		h.onOutcome(sig, err)
	}
	return err
}

// Run handles back signals until ctx is done or the SDL source sees a quit
// event. Signals are dispatched one at a time; a signal arriving while the
// previous one is still being handled is dropped.
//
// When an SDL source is configured it runs on the calling goroutine, which
// must be the one that initialized SDL.
func (h *Host) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := input.Merge(ctx, h.sourceFailed, h.sources...)
	var foreground chan input.Signal
	if h.sdl != nil {
		foreground = make(chan input.Signal)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		h.dispatchLoop(ctx, merged, foreground)
	}()

	var err error
	if h.sdl != nil {
		err = h.sdl.Run(ctx, foreground)
		cancel()
	} else {
		<-ctx.Done()
	}
	<-loopDone

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (h *Host) dispatchLoop(ctx context.Context, merged, foreground <-chan input.Signal) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for merged != nil || foreground != nil {
		var sig input.Signal
		var ok bool
		select {
		case <-ctx.Done():
			return
		case sig, ok = <-merged:
			if !ok {
				merged = nil
				continue
			}
		case sig, ok = <-foreground:
			if !ok {
				foreground = nil
				continue
			}
		}

		if !h.dispatching.CompareAndSwap(false, true) {
			h.dropped.Inc()
			h.logger.Debug("Back dropped", "source", sig.Source)
			continue
		}
		wg.Add(1)
		go func(sig input.Signal) {
			defer wg.Done()
			defer h.dispatching.Store(false)
			_ = h.Dispatch(ctx, sig)
		}(sig)
	}
}

func (h *Host) sourceFailed(src input.Source, err error) {
	h.logger.Error("Input source stopped", "source", src.Name(), "error", err)
}

// Suspend saves the current session to storage.
func (h *Host) Suspend(ctx context.Context) error {
	blob, err := h.nav.SaveSession(ctx)
	if err != nil {
		return err
	}
	if err := h.store.Save(ctx, h.id, blob); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	h.logger.Debug("Session suspended", "host", h.id, "bytes", len(blob))
	return nil
}

// Resume restores the stored session, if any, and reports whether one was
// restored. A stored session that cannot be restored is deleted, leaving the
// stack empty.
func (h *Host) Resume(ctx context.Context) (bool, error) {
	blob, err := h.store.Load(ctx, h.id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}

	if err := h.nav.RestoreFromSession(ctx, blob); err != nil {
		if errors.Is(err, navigation.ErrCorruptSession) {
			h.logger.Warn("Discarding stored session", "host", h.id, "error", err)
			if delErr := h.store.Delete(ctx, h.id); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
				h.logger.Error("Failed to delete stored session", "host", h.id, "error", delErr)
			}
		}
		return false, err
	}
	h.logger.Debug("Session resumed", "host", h.id, "entries", len(h.nav.Entries()))
	return true, nil
}

// Forget deletes the stored session without touching the live stack.
func (h *Host) Forget(ctx context.Context) error {
	err := h.store.Delete(ctx, h.id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Close releases storage the host opened itself.
func (h *Host) Close() error {
	if h.ownsStore {
		return h.store.Close()
	}
	return nil
}
