package navigation

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/internal"
)

// NavigatedEvent is raised once per committed transition.
type NavigatedEvent struct {
	Content   Page
	TypeKey   TypeKey
	Parameter any
	Mode      Mode
	Index     int // Cursor after the transition
}

// NavigatedFunc receives Navigated events.
type NavigatedFunc func(NavigatedEvent)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPresenter sets the renderer that displays page content.
func WithPresenter(p Presenter) Option {
	return func(c *Coordinator) {
		c.presenter = p
	}
}

// WithLogger overrides the engine's internal logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithSessionStore sets the store pages save their state into.
func WithSessionStore(s *SessionStore) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// Coordinator is the navigation state machine. It owns a Stack and a
// SessionStore and is their only writer. Exactly one transition may be in
// flight: a request arriving while another is waiting on a guard or
// committing is refused with ErrBusy, never queued.
//
// Transitions run on the calling goroutine. A navigating-from hook that
// blocks, or takes a deferral, suspends that goroutine until it resolves;
// read accessors stay usable from other goroutines meanwhile.
type Coordinator struct {
	registry  *Registry
	presenter Presenter
	logger    *slog.Logger

	phase atomic.Int32

	mu      sync.RWMutex
	stack   *Stack
	store   *SessionStore
	content Page

	subsMu  sync.Mutex
	subs    map[uint64]NavigatedFunc
	nextSub atomic.Uint64
}

// NewCoordinator creates a Coordinator with an empty stack.
func NewCoordinator(registry *Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  registry,
		presenter: PresenterFunc(func(Page) {}),
		stack:     NewStack(),
		subs:      make(map[uint64]NavigatedFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = internal.GetInternalLogger()
	}
	if c.store == nil {
		c.store = NewSessionStore()
	}
	return c
}

// NavigateTo pushes a new entry for key and displays it. The current page's
// navigating-from hook runs first and may veto with ErrCancelled; a veto or
// hook failure leaves everything as it was. Entries above the cursor are
// discarded, along with their saved state.
func (c *Coordinator) NavigateTo(ctx context.Context, key TypeKey, parameter any) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	incoming, err := c.registry.describe(key, parameter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	outgoing, outIndex := c.stack.Current(), c.stack.cursor
	c.mu.RUnlock()

	if outgoing != nil {
		if err := c.guard(ctx, outgoing, ModeForward, key, parameter); err != nil {
			return err
		}
	}

	c.phase.Store(int32(PhaseCommitting))

	page, err := c.instantiate(incoming)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.stack.pushDescriptor(incoming)
	c.content = page
	c.mu.Unlock()

	c.commit(outgoing, outIndex, incoming, ModeNew)
	return nil
}

// GoBack moves to the previous entry. Returns ErrUnavailable without touching
// anything when there is none.
func (c *Coordinator) GoBack(ctx context.Context) error {
	return c.move(ctx, ModeBack)
}

// GoForward moves to the next entry of the forward branch. Returns
// ErrUnavailable without touching anything when there is none.
func (c *Coordinator) GoForward(ctx context.Context) error {
	return c.move(ctx, ModeForward)
}

func (c *Coordinator) move(ctx context.Context, mode Mode) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.moveClaimed(ctx, mode)
}

// moveClaimed runs a back or forward transition. The caller holds the
// single-flight slot.
func (c *Coordinator) moveClaimed(ctx context.Context, mode Mode) error {
	c.mu.RLock()
	outgoing, outIndex := c.stack.Current(), c.stack.cursor
	available := c.stack.CanGoBack()
	targetIndex := outIndex - 1
	if mode == ModeForward {
		available = c.stack.CanGoForward()
		targetIndex = outIndex + 1
	}
	incoming := c.stack.At(targetIndex)
	c.mu.RUnlock()

	if !available {
		return ErrUnavailable
	}

	if err := c.guard(ctx, outgoing, mode, "", nil); err != nil {
		return err
	}

	c.phase.Store(int32(PhaseCommitting))

	// Entries restored from a session have no instance until shown.
	page, err := c.instantiate(incoming)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if mode == ModeBack {
		err = c.stack.MoveBack()
	} else {
		err = c.stack.MoveForward()
	}
	if err == nil {
		c.content = page
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.commit(outgoing, outIndex, incoming, mode)
	return nil
}

// RestoreFromSession replaces the whole history with the one encoded in blob
// and redisplays its current entry with ModeRefresh. No guard runs: resuming
// is not a user action. A blob that fails to decode, or whose current page
// cannot be created, leaves the stack empty.
func (c *Coordinator) RestoreFromSession(ctx context.Context, blob []byte) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.phase.Store(int32(PhaseCommitting))

	restored, states, err := decodeStack(blob, c.registry)
	if err != nil {
		c.reset()
		c.logger.Warn("session restore failed", "error", err)
		return err
	}

	current := restored.Current()
	var page Page
	if current != nil {
		if page, err = c.instantiate(current); err != nil {
			c.reset()
			c.logger.Warn("session restore failed", "error", err)
			return err
		}
	}

	c.mu.Lock()
	c.stack.replace(restored)
	c.content = page
	c.mu.Unlock()
	c.store.replace(states)

	c.presenter.Present(page)
	if current == nil {
		c.logger.Debug("restored empty session")
		return nil
	}

	c.enter(current, restored.cursor, ModeRefresh, nil)
	c.emit(current, restored.cursor, ModeRefresh)
	c.logger.Debug("session restored",
		"entries", restored.Len(),
		"cursor", restored.cursor,
		"type", current.typeKey,
	)
	return nil
}

// SaveSession makes the current page flush its state, then serializes the
// stack and every saved state. The stack is not changed and a veto from the
// probe is ignored.
func (c *Coordinator) SaveSession(ctx context.Context) ([]byte, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	c.mu.RLock()
	current, index := c.stack.Current(), c.stack.cursor
	c.mu.RUnlock()

	if current != nil && current.created {
		if err := c.guard(ctx, current, ModeRefresh, current.typeKey, current.parameter); err != nil && !IsCancelled(err) {
			return nil, err
		}
		c.leave(current, index, NavigationArgs{
			Mode:      ModeRefresh,
			TypeKey:   current.typeKey,
			Parameter: current.parameter,
			Content:   current.instance,
		})
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Serialize(c.stack)
}

// RemoveEntry drops a history entry other than the current one. Saved states
// of deeper entries move down with them.
func (c *Coordinator) RemoveEntry(index int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.stack.RemoveAt(index); err != nil {
		return err
	}
	c.store.removeAt(index)
	return nil
}

// OnNavigated subscribes fn to Navigated events. The returned function
// removes the subscription.
func (c *Coordinator) OnNavigated(fn NavigatedFunc) (unsubscribe func()) {
	id := c.nextSub.Inc()
	c.subsMu.Lock()
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

// Phase returns the state machine's current phase.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// Content returns the displayed page instance, nil before the first navigation.
func (c *Coordinator) Content() Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.content
}

// Current returns the descriptor at the cursor.
func (c *Coordinator) Current() *Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stack.Current()
}

// Cursor returns the index of the current entry, -1 when empty.
func (c *Coordinator) Cursor() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stack.Cursor()
}

// CanGoBack reports whether GoBack has somewhere to go.
func (c *Coordinator) CanGoBack() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stack.CanGoBack()
}

// CanGoForward reports whether GoForward has somewhere to go.
func (c *Coordinator) CanGoForward() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stack.CanGoForward()
}

// Entries returns a snapshot of the history, forward branch included.
func (c *Coordinator) Entries() []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stack.Entries()
}

// Store returns the coordinator's session store.
func (c *Coordinator) Store() *SessionStore {
	return c.store
}

func (c *Coordinator) begin() error {
	if !c.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseNavigatingOut)) {
		return ErrBusy
	}
	return nil
}

func (c *Coordinator) end() {
	c.phase.Store(int32(PhaseIdle))
}

// beginWalk claims the single-flight slot for a back guard walk, so no
// transition can change the current page while guards are evaluating.
func (c *Coordinator) beginWalk() error {
	if !c.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseGuarding)) {
		return ErrBusy
	}
	return nil
}

// goBackClaimed hands a walk's claim straight to a back transition.
func (c *Coordinator) goBackClaimed(ctx context.Context) error {
	if !c.phase.CompareAndSwap(int32(PhaseGuarding), int32(PhaseNavigatingOut)) {
		return ErrBusy
	}
	defer c.end()
	return c.moveClaimed(ctx, ModeBack)
}

// endWalk releases a walk's claim if it was not handed to a transition.
func (c *Coordinator) endWalk() {
	c.phase.CompareAndSwap(int32(PhaseGuarding), int32(PhaseIdle))
}

// guard runs the outgoing page's navigating-from hook and waits for any
// deferral it took.
func (c *Coordinator) guard(ctx context.Context, outgoing *Descriptor, mode Mode, key TypeKey, parameter any) error {
	h, ok := outgoing.instance.(NavigatingFromHandler)
	if !ok {
		return nil
	}

	args := &NavigatingFromArgs{
		CancelContext: newCancelContext(),
		Mode:          mode,
		TypeKey:       key,
		Parameter:     parameter,
	}
	if err := h.OnNavigatingFrom(ctx, args); err != nil {
		return &GuardError{Op: "navigating_from", TypeKey: outgoing.typeKey, Err: err}
	}
	if err := args.wait(ctx); err != nil {
		return err
	}
	if args.Cancelled() {
		c.logger.Debug("navigation vetoed", "type", outgoing.typeKey, "mode", mode)
		return ErrCancelled
	}
	return nil
}

func (c *Coordinator) instantiate(d *Descriptor) (Page, error) {
	if d.created {
		return d.instance, nil
	}
	page, err := c.registry.create(d.typeKey, d.parameter)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	d.setInstance(page)
	c.mu.Unlock()
	return page, nil
}

// commit fires the post-mutation half of a transition. The stack already
// points at incoming.
func (c *Coordinator) commit(outgoing *Descriptor, outIndex int, incoming *Descriptor, mode Mode) {
	inIndex := c.stack.cursor

	c.presenter.Present(incoming.instance)

	if outgoing != nil {
		c.leave(outgoing, outIndex, NavigationArgs{
			Mode:      mode,
			TypeKey:   incoming.typeKey,
			Parameter: incoming.parameter,
			Content:   incoming.instance,
		})
	}

	if mode == ModeNew {
		c.store.PurgeFrom(inIndex)
	}

	c.enter(incoming, inIndex, mode, outgoing)
	c.emit(incoming, inIndex, mode)

	c.logger.Debug("navigated",
		"type", incoming.typeKey,
		"mode", mode,
		"cursor", inIndex,
		"entries", c.stack.Len(),
	)
}

func (c *Coordinator) leave(d *Descriptor, index int, args NavigationArgs) {
	if h, ok := d.instance.(NavigatedFromHandler); ok {
		h.OnNavigatedFrom(args)
	}
	if s, ok := d.instance.(StateSaver); ok {
		state := State{}
		s.SaveState(state)
		c.store.Save(PageKeyFor(index), state)
	}
}

func (c *Coordinator) enter(d *Descriptor, index int, mode Mode, from *Descriptor) {
	if l, ok := d.instance.(StateLoader); ok {
		var saved State
		if mode != ModeNew {
			saved, _ = c.store.Load(PageKeyFor(index))
		}
		l.LoadState(d.parameter, saved)
	}
	if h, ok := d.instance.(NavigatedToHandler); ok {
		args := NavigationArgs{Mode: mode}
		if from != nil {
			args.TypeKey = from.typeKey
			args.Parameter = from.parameter
			args.Content = from.instance
		}
		h.OnNavigatedTo(args)
	}
}

func (c *Coordinator) emit(d *Descriptor, index int, mode Mode) {
	c.subsMu.Lock()
	ids := make([]uint64, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]NavigatedFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.subsMu.Unlock()

	e := NavigatedEvent{
		Content:   d.instance,
		TypeKey:   d.typeKey,
		Parameter: d.parameter,
		Mode:      mode,
		Index:     index,
	}
	for _, fn := range fns {
		fn(e)
	}
}

// reset empties the stack and store after a failed restore.
func (c *Coordinator) reset() {
	c.mu.Lock()
	hadContent := c.content != nil
	c.stack.Clear()
	c.content = nil
	c.mu.Unlock()
	c.store.Clear()

	if hadContent {
		c.presenter.Present(nil)
	}
}
