package navigation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	pageHome     TypeKey = "home"
	pageDetails  TypeKey = "details"
	pageSettings TypeKey = "settings"
	pageDialog   TypeKey = "dialog"
)

type detailsParam struct {
	ID int `json:"id"`
}

// recorder collects lifecycle calls across every page of a harness.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.calls
	r.calls = nil
	return out
}

type testPage struct {
	key   TypeKey
	param any
	rec   *recorder

	guard func(ctx context.Context, args *NavigatingFromArgs) error
	save  State

	loadedParam any
	loaded      State
	loads       int
}

func (p *testPage) OnNavigatingFrom(ctx context.Context, args *NavigatingFromArgs) error {
	p.rec.add("%s:navigating_from:%s", p.key, args.Mode)
	if p.guard != nil {
		return p.guard(ctx, args)
	}
	return nil
}

func (p *testPage) OnNavigatedFrom(args NavigationArgs) {
	p.rec.add("%s:navigated_from:%s", p.key, args.Mode)
}

func (p *testPage) OnNavigatedTo(args NavigationArgs) {
	p.rec.add("%s:navigated_to:%s", p.key, args.Mode)
}

func (p *testPage) SaveState(state State) {
	for k, v := range p.save {
		state[k] = v
	}
}

func (p *testPage) LoadState(parameter any, saved State) {
	p.loadedParam = parameter
	p.loaded = saved
	p.loads++
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	rec      *recorder
	registry *Registry
	nav      *Coordinator

	mu        sync.Mutex
	created   map[TypeKey][]*testPage
	setup     map[TypeKey]func(*testPage)
	presented []Page
	events    []NavigatedEvent
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		ctx:     context.Background(),
		rec:     &recorder{},
		created: make(map[TypeKey][]*testPage),
		setup:   make(map[TypeKey]func(*testPage)),
	}

	h.registry = NewRegistry().
		Register(pageHome, h.factory(pageHome)).
		Register(pageDetails, h.factory(pageDetails), WithDecoder(DecodeAs[detailsParam]())).
		Register(pageSettings, h.factory(pageSettings)).
		Register(pageDialog, h.factory(pageDialog), WithoutPersistence())

	h.nav = NewCoordinator(h.registry, WithPresenter(PresenterFunc(func(p Page) {
		h.mu.Lock()
		h.presented = append(h.presented, p)
		h.mu.Unlock()
	})))
	h.nav.OnNavigated(func(e NavigatedEvent) {
		h.mu.Lock()
		h.events = append(h.events, e)
		h.mu.Unlock()
	})
	return h
}

func (h *harness) factory(key TypeKey) Factory {
	return func(parameter any) (Page, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		p := &testPage{key: key, param: parameter, rec: h.rec}
		if fn := h.setup[key]; fn != nil {
			fn(p)
		}
		h.created[key] = append(h.created[key], p)
		return p, nil
	}
}

// configure runs fn on every page of key created from now on.
func (h *harness) configure(key TypeKey, fn func(*testPage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setup[key] = fn
}

// page returns the most recently created page of key.
func (h *harness) page(key TypeKey) *testPage {
	h.mu.Lock()
	defer h.mu.Unlock()
	pages := h.created[key]
	require.NotEmpty(h.t, pages, "no %s page created", key)
	return pages[len(pages)-1]
}

func (h *harness) createdCount(key TypeKey) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.created[key])
}

func (h *harness) eventCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func (h *harness) presentedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.presented)
}

func (h *harness) navigate(key TypeKey, parameter any) {
	h.t.Helper()
	require.NoError(h.t, h.nav.NavigateTo(h.ctx, key, parameter))
}

func (h *harness) keys() []TypeKey {
	var out []TypeKey
	for _, d := range h.nav.Entries() {
		out = append(out, d.TypeKey())
	}
	return out
}
