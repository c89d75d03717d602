package input

import (
	"context"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/constants"
)

// SDLSource reads the SDL event queue and emits a signal for the configured
// back keys and controller buttons. Run must be called from the thread that
// initialized SDL's video subsystem.
type SDLSource struct {
	BackButtons     []constants.VirtualButton // Default: B
	BackKeys        []sdl.Keycode             // Default: Escape, AC Back
	FlipFaceButtons bool                      // Direct face mapping (A=A, B=B) instead of the Nintendo-style swap
	InputDelay      time.Duration             // Debounce between signals
	Forward         func(sdl.Event)           // Receives every event that is not a back signal

	debounce debouncer
}

// NewSDLSource creates a source with the default back bindings.
func NewSDLSource() *SDLSource {
	return &SDLSource{
		BackButtons: []constants.VirtualButton{constants.DefaultBackButton},
		BackKeys:    []sdl.Keycode{sdl.K_ESCAPE, sdl.K_AC_BACK},
		InputDelay:  constants.DefaultInputDelay,
	}
}

func (s *SDLSource) Name() string {
	return "sdl"
}

// Run pumps SDL events until ctx is done or SDL reports a quit.
func (s *SDLSource) Run(ctx context.Context, out chan<- Signal) error {
	for ctx.Err() == nil {
		event := sdl.WaitEventTimeout(16)
		if event == nil {
			continue
		}
		if _, ok := event.(*sdl.QuitEvent); ok {
			s.forward(event)
			return nil
		}
		sig, ok := s.Translate(event)
		if !ok {
			s.forward(event)
			continue
		}
		if !s.debounce.allow(sig.At) {
			continue
		}
		if !send(ctx, out, sig) {
			break
		}
	}
	return ctx.Err()
}

func (s *SDLSource) forward(event sdl.Event) {
	if s.Forward != nil {
		s.Forward(event)
	}
}

// Translate reports whether event is a back signal. Only presses count;
// releases and key repeats are ignored.
func (s *SDLSource) Translate(event sdl.Event) (Signal, bool) {
	s.debounce.delay = s.InputDelay

	switch e := event.(type) {
	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return Signal{}, false
		}
		for _, k := range s.BackKeys {
			if e.Keysym.Sym == k {
				return Signal{Source: s.Name(), At: time.Now()}, true
			}
		}
	case *sdl.ControllerButtonEvent:
		if e.Type != sdl.CONTROLLERBUTTONDOWN {
			return Signal{}, false
		}
		vb := s.virtualButton(sdl.GameControllerButton(e.Button))
		for _, b := range s.BackButtons {
			if vb == b {
				return Signal{Source: s.Name(), Button: vb, At: time.Now()}, true
			}
		}
	}
	return Signal{}, false
}

// virtualButton maps an SDL controller button to a virtual button. SDL names
// buttons by position (A = bottom), handheld firmware by label (A = right),
// so the face buttons swap unless FlipFaceButtons is set.
func (s *SDLSource) virtualButton(b sdl.GameControllerButton) constants.VirtualButton {
	switch b {
	case sdl.CONTROLLER_BUTTON_A:
		if s.FlipFaceButtons {
			return constants.VirtualButtonA
		}
		return constants.VirtualButtonB
	case sdl.CONTROLLER_BUTTON_B:
		if s.FlipFaceButtons {
			return constants.VirtualButtonB
		}
		return constants.VirtualButtonA
	case sdl.CONTROLLER_BUTTON_X:
		if s.FlipFaceButtons {
			return constants.VirtualButtonX
		}
		return constants.VirtualButtonY
	case sdl.CONTROLLER_BUTTON_Y:
		if s.FlipFaceButtons {
			return constants.VirtualButtonY
		}
		return constants.VirtualButtonX
	case sdl.CONTROLLER_BUTTON_DPAD_UP:
		return constants.VirtualButtonUp
	case sdl.CONTROLLER_BUTTON_DPAD_DOWN:
		return constants.VirtualButtonDown
	case sdl.CONTROLLER_BUTTON_DPAD_LEFT:
		return constants.VirtualButtonLeft
	case sdl.CONTROLLER_BUTTON_DPAD_RIGHT:
		return constants.VirtualButtonRight
	case sdl.CONTROLLER_BUTTON_LEFTSHOULDER:
		return constants.VirtualButtonL1
	case sdl.CONTROLLER_BUTTON_RIGHTSHOULDER:
		return constants.VirtualButtonR1
	case sdl.CONTROLLER_BUTTON_START:
		return constants.VirtualButtonStart
	case sdl.CONTROLLER_BUTTON_BACK:
		return constants.VirtualButtonSelect
	case sdl.CONTROLLER_BUTTON_GUIDE:
		return constants.VirtualButtonMenu
	default:
		return constants.VirtualButtonUnassigned
	}
}
