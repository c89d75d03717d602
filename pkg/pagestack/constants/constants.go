// Package constants defines shared constants, types, and configuration values
// used throughout the pagestack packages.
package constants

import (
	"os"
	"strings"
	"time"
)

// Development is the environment variable value for development mode.
const Development = "DEV"

// Environment variable names.
const (
	EnvironmentEnvVar = "ENVIRONMENT"       // DEV enables debug logging of the engine
	ConfigEnvVar      = "PAGESTACK_CONFIG"  // Path to a config file, overrides the search path
	FlipFaceEnvVar    = "FLIP_FACE_BUTTONS" // Any value enables direct face button mapping
)

// IsDevMode returns true if running in development mode (ENVIRONMENT=DEV).
func IsDevMode() bool {
	return os.Getenv(EnvironmentEnvVar) == Development
}

// VirtualButton represents an abstract input button, mapped from physical hardware.
// Back signals are expressed in terms of virtual buttons so one configuration
// works across controllers.
type VirtualButton int

const (
	VirtualButtonUnassigned VirtualButton = iota
	VirtualButtonUp
	VirtualButtonDown
	VirtualButtonLeft
	VirtualButtonRight
	VirtualButtonA
	VirtualButtonB
	VirtualButtonX
	VirtualButtonY
	VirtualButtonL1
	VirtualButtonR1
	VirtualButtonStart
	VirtualButtonSelect
	VirtualButtonMenu
)

var virtualButtonNames = map[VirtualButton]string{
	VirtualButtonUnassigned: "Unassigned",
	VirtualButtonUp:         "Up",
	VirtualButtonDown:       "Down",
	VirtualButtonLeft:       "Left",
	VirtualButtonRight:      "Right",
	VirtualButtonA:          "A",
	VirtualButtonB:          "B",
	VirtualButtonX:          "X",
	VirtualButtonY:          "Y",
	VirtualButtonL1:         "L1",
	VirtualButtonR1:         "R1",
	VirtualButtonStart:      "Start",
	VirtualButtonSelect:     "Select",
	VirtualButtonMenu:       "Menu",
}

func (vb VirtualButton) GetName() string {
	if name, ok := virtualButtonNames[vb]; ok {
		return name
	}
	return "Unknown"
}

// ParseVirtualButton resolves a button name, case-insensitively.
func ParseVirtualButton(name string) (VirtualButton, bool) {
	for vb, n := range virtualButtonNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) && vb != VirtualButtonUnassigned {
			return vb, true
		}
	}
	return VirtualButtonUnassigned, false
}

// Defaults.
const (
	DefaultBackButton     = VirtualButtonB
	DefaultInputDelay     = 20 * time.Millisecond // Debounce between back signals from one source
	DefaultEvdevDevice    = "/dev/input/event1"
	DefaultSessionBackend = "file"
)
