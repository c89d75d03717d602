package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVirtualButton(t *testing.T) {
	vb, ok := ParseVirtualButton(" b ")
	assert.True(t, ok)
	assert.Equal(t, VirtualButtonB, vb)
	assert.Equal(t, "B", vb.GetName())

	_, ok = ParseVirtualButton("unassigned")
	assert.False(t, ok)
	_, ok = ParseVirtualButton("Turbo")
	assert.False(t, ok)

	assert.Equal(t, "Unknown", VirtualButton(99).GetName())
}

func TestIsDevMode(t *testing.T) {
	t.Setenv(EnvironmentEnvVar, Development)
	assert.True(t, IsDevMode())
	t.Setenv(EnvironmentEnvVar, "PROD")
	assert.False(t, IsDevMode())
}
