package input

import (
	"context"
	"testing"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/constants"
)

func TestSDLTranslateKeys(t *testing.T) {
	src := NewSDLSource()

	tests := []struct {
		name  string
		event sdl.Event
		want  bool
	}{
		{name: "escape press", event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}, want: true},
		{name: "android back", event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_AC_BACK}}, want: true},
		{name: "escape release", event: &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}},
		{name: "escape repeat", event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}},
		{name: "other key", event: &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_RETURN}}},
		{name: "mouse", event: &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := src.Translate(tt.event)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, "sdl", sig.Source)
			}
		})
	}
}

func TestSDLTranslateControllerFaceButtons(t *testing.T) {
	press := func(b sdl.GameControllerButton) sdl.Event {
		return &sdl.ControllerButtonEvent{Type: sdl.CONTROLLERBUTTONDOWN, Button: uint8(b), State: sdl.PRESSED}
	}

	src := NewSDLSource()
	_, ok := src.Translate(press(sdl.CONTROLLER_BUTTON_B))
	assert.False(t, ok, "positional B is labelled A on handhelds")

	sig, ok := src.Translate(press(sdl.CONTROLLER_BUTTON_A))
	require.True(t, ok)
	assert.Equal(t, constants.VirtualButtonB, sig.Button)

	flipped := NewSDLSource()
	flipped.FlipFaceButtons = true
	_, ok = flipped.Translate(press(sdl.CONTROLLER_BUTTON_A))
	assert.False(t, ok)
	sig, ok = flipped.Translate(press(sdl.CONTROLLER_BUTTON_B))
	require.True(t, ok)
	assert.Equal(t, constants.VirtualButtonB, sig.Button)

	_, ok = src.Translate(&sdl.ControllerButtonEvent{Type: sdl.CONTROLLERBUTTONUP, Button: uint8(sdl.CONTROLLER_BUTTON_A)})
	assert.False(t, ok, "releases are ignored")

	src.BackButtons = []constants.VirtualButton{constants.VirtualButtonMenu}
	sig, ok = src.Translate(press(sdl.CONTROLLER_BUTTON_GUIDE))
	require.True(t, ok)
	assert.Equal(t, constants.VirtualButtonMenu, sig.Button)
}

func TestParseEvdevCodes(t *testing.T) {
	codes, err := ParseEvdevCodes([]string{"key_back", " BTN_EAST "})
	require.NoError(t, err)
	assert.Equal(t, []evdev.EvCode{evdev.KEY_BACK, evdev.BTN_EAST}, codes)

	_, err = ParseEvdevCodes([]string{"KEY_NOPE"})
	assert.ErrorContains(t, err, "KEY_NOPE")
}

func TestEvdevIsBack(t *testing.T) {
	src, err := NewEvdevSource("", nil)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultEvdevDevice, src.Device)

	assert.True(t, src.isBack(evdev.EV_KEY, evdev.KEY_BACK, 1))
	assert.True(t, src.isBack(evdev.EV_KEY, evdev.BTN_EAST, 1))
	assert.False(t, src.isBack(evdev.EV_KEY, evdev.KEY_BACK, 0), "release")
	assert.False(t, src.isBack(evdev.EV_KEY, evdev.KEY_BACK, 2), "autorepeat")
	assert.False(t, src.isBack(evdev.EV_KEY, evdev.BTN_SOUTH, 1))
	assert.False(t, src.isBack(evdev.EV_ABS, evdev.KEY_BACK, 1))
}

func TestEvdevMissingDevice(t *testing.T) {
	src, err := NewEvdevSource("/nonexistent/event9", nil)
	require.NoError(t, err)

	err = src.Run(context.Background(), make(chan Signal))
	assert.ErrorContains(t, err, "/nonexistent/event9")
}

func TestDebouncer(t *testing.T) {
	d := debouncer{delay: 50 * time.Millisecond}
	start := time.Now()

	assert.True(t, d.allow(start))
	assert.False(t, d.allow(start.Add(10*time.Millisecond)))
	assert.True(t, d.allow(start.Add(60*time.Millisecond)))
}

func TestMergeChannels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, b := NewChannel("a"), NewChannel("b")
	out := Merge(ctx, nil, a, b)

	require.True(t, a.Back())
	first := <-out
	require.True(t, b.Back())
	second := <-out

	assert.ElementsMatch(t, []string{"a", "b"}, []string{first.Source, second.Source})

	cancel()
	_, open := <-out
	assert.False(t, open, "merged channel closes once every source stops")
}

func TestChannelDropsWhenFull(t *testing.T) {
	c := NewChannel("ui")
	assert.True(t, c.Back())
	assert.False(t, c.Back())
}
