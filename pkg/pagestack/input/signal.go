// Package input turns raw platform events into back signals.
//
// A Source watches one platform mechanism (SDL events, a Linux input device)
// and emits a Signal whenever the user asks to go back. Sources never call
// into navigation themselves: the host drains their signals one at a time.
package input

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/constants"
)

// Signal is one physical request to go back.
type Signal struct {
	Source string                  // Name of the source that produced it (e.g., "sdl", "evdev")
	Button constants.VirtualButton // Virtual button pressed, Unassigned for plain keys
	At     time.Time
}

// Source emits back signals until ctx is done.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- Signal) error
}

// debouncer drops signals arriving closer together than delay.
type debouncer struct {
	delay time.Duration
	last  time.Time
}

func (d *debouncer) allow(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < d.delay {
		return false
	}
	d.last = now
	return true
}

// send delivers s unless ctx is done first.
func send(ctx context.Context, out chan<- Signal, s Signal) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

// Merge runs every source and funnels their signals into one channel, which
// is closed once all sources have returned. Source errors are passed to
// onError, if set.
func Merge(ctx context.Context, onError func(Source, error), sources ...Source) <-chan Signal {
	out := make(chan Signal)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			if err := src.Run(ctx, out); err != nil && ctx.Err() == nil && onError != nil {
				onError(src, err)
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Channel is a Source fed by application code, for back triggers that do not
// come from hardware (an on-screen back arrow, a test).
type Channel struct {
	name string
	ch   chan Signal
}

// NewChannel creates a programmatic source.
func NewChannel(name string) *Channel {
	return &Channel{name: name, ch: make(chan Signal, 1)}
}

func (c *Channel) Name() string {
	return c.name
}

// Back queues a back signal. It does not block: if a signal is already
// waiting, the new one is dropped.
func (c *Channel) Back() bool {
	select {
	case c.ch <- Signal{Source: c.name, At: time.Now()}:
		return true
	default:
		return false
	}
}

func (c *Channel) Run(ctx context.Context, out chan<- Signal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-c.ch:
			if !send(ctx, out, s) {
				return ctx.Err()
			}
		}
	}
}
