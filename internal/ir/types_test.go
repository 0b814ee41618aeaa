package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlow(t *testing.T) {
	for in, want := range map[string]Flow{
		"playback":  Playback,
		"Render":    Playback,
		"recording": Recording,
		"CAPTURE":   Recording,
	} {
		got, err := ParseFlow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFlow("sideways")
	assert.Error(t, err)
}

func TestFlowRegistryName(t *testing.T) {
	assert.Equal(t, "Render", Playback.RegistryName())
	assert.Equal(t, "Capture", Recording.RegistryName())
}

func TestScope(t *testing.T) {
	assert.Equal(t, "HKCU", UserScope.String())
	assert.Equal(t, "HKLM", SystemScope.String())
	assert.Equal(t, SystemScope, UserScope.Alternate())
	assert.Equal(t, UserScope, SystemScope.Alternate())

	s, err := ParseScope("hkey_local_machine")
	require.NoError(t, err)
	assert.Equal(t, SystemScope, s)

	_, err = ParseScope("HKCR")
	assert.Error(t, err)
}

func TestRootOf(t *testing.T) {
	root, ok := RootOf(`FxProperties\{abc}\User`)
	assert.True(t, ok)
	assert.Equal(t, EffectsPath, root)

	root, ok = RootOf("properties")
	assert.True(t, ok)
	assert.Equal(t, BasePath, root)

	_, ok = RootOf("Other")
	assert.False(t, ok)
}

func TestNormalizeSubkey(t *testing.T) {
	assert.Equal(t, "Properties", NormalizeSubkey("props"))
	assert.Equal(t, "Properties", NormalizeSubkey("Properties"))
	assert.Equal(t, "FxProperties", NormalizeSubkey(""))
	assert.Equal(t, "FxProperties", NormalizeSubkey("fx"))
}

func TestState(t *testing.T) {
	assert.Equal(t, On, Known(true))
	assert.Equal(t, Off, Known(false))

	v, ok := On.Bool()
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = Unknown.Bool()
	assert.False(t, ok)
	assert.False(t, Unknown.IsKnown())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestParseState(t *testing.T) {
	for in, want := range map[string]State{
		"on": On, "TRUE": On, "enabled": On,
		"off": Off, "false": Off, "Disabled": Off,
		"unknown": Unknown, "": Unknown,
	} {
		got, err := ParseState(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseState("maybe")
	assert.Error(t, err)
}

func TestTextMarshaling(t *testing.T) {
	b, err := On.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "on", string(b))

	var f Flow
	require.NoError(t, f.UnmarshalText([]byte("capture")))
	assert.Equal(t, Recording, f)

	var s Scope
	require.NoError(t, s.UnmarshalText([]byte("HKLM")))
	assert.Equal(t, SystemScope, s)
}
