package input

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/holoplot/go-evdev"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/constants"
)

// evdevCodes names the key codes a back binding may use.
var evdevCodes = map[string]evdev.EvCode{
	"KEY_ESC":       evdev.KEY_ESC,
	"KEY_BACK":      evdev.KEY_BACK,
	"KEY_BACKSPACE": evdev.KEY_BACKSPACE,
	"KEY_EXIT":      evdev.KEY_EXIT,
	"KEY_HOMEPAGE":  evdev.KEY_HOMEPAGE,
	"BTN_EAST":      evdev.BTN_EAST,
	"BTN_SOUTH":     evdev.BTN_SOUTH,
	"BTN_NORTH":     evdev.BTN_NORTH,
	"BTN_WEST":      evdev.BTN_WEST,
	"BTN_SELECT":    evdev.BTN_SELECT,
	"BTN_MODE":      evdev.BTN_MODE,
	"BTN_START":     evdev.BTN_START,
}

// DefaultEvdevCodes are the codes treated as back when none are configured.
var DefaultEvdevCodes = []string{"KEY_BACK", "KEY_ESC", "BTN_EAST"}

// ParseEvdevCodes resolves code names such as "KEY_BACK".
func ParseEvdevCodes(names []string) ([]evdev.EvCode, error) {
	codes := make([]evdev.EvCode, 0, len(names))
	for _, name := range names {
		code, ok := evdevCodes[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown evdev code %q", name)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// EvdevSource reads a Linux input device directly. It is meant for
// handhelds whose back button (or power-menu overlay) is not delivered
// through SDL.
type EvdevSource struct {
	Device     string
	Codes      []evdev.EvCode
	InputDelay time.Duration

	debounce debouncer
}

// NewEvdevSource creates a source for device, watching the given code names.
// An empty names list selects DefaultEvdevCodes.
func NewEvdevSource(device string, names []string) (*EvdevSource, error) {
	if device == "" {
		device = constants.DefaultEvdevDevice
	}
	if len(names) == 0 {
		names = DefaultEvdevCodes
	}
	codes, err := ParseEvdevCodes(names)
	if err != nil {
		return nil, err
	}
	return &EvdevSource{
		Device:     device,
		Codes:      codes,
		InputDelay: constants.DefaultInputDelay,
	}, nil
}

func (s *EvdevSource) Name() string {
	return "evdev"
}

// Run opens the device and reads until ctx is done. The device is closed on
// return, which also unblocks a pending read.
func (s *EvdevSource) Run(ctx context.Context, out chan<- Signal) error {
	dev, err := evdev.Open(s.Device)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Device, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = dev.Close()
	}()

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read %s: %w", s.Device, err)
		}
		if !s.isBack(ev.Type, ev.Code, ev.Value) {
			continue
		}
		now := time.Now()
		s.debounce.delay = s.InputDelay
		if !s.debounce.allow(now) {
			continue
		}
		if !send(ctx, out, Signal{Source: s.Name(), At: now}) {
			return ctx.Err()
		}
	}
}

// isBack reports whether the event is a press (value 1) of a back code.
// Releases (0) and autorepeat (2) are ignored.
func (s *EvdevSource) isBack(typ evdev.EvType, code evdev.EvCode, value int32) bool {
	if typ != evdev.EV_KEY || value != 1 {
		return false
	}
	for _, c := range s.Codes {
		if c == code {
			return true
		}
	}
	return false
}
