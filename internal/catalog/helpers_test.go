package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

const (
	keyA = "{83a9be54-901e-4429-993b-c9088e3028a0}"
	keyB = "{0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0}"
)

// writeCatalog writes text to a catalog file in a fresh temp dir.
func writeCatalog(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendor_toggles.ini")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func readCatalog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func sampleMain() rule.MainRule {
	return rule.MainRule{
		Section: "main_0123456789abcdef",
		Simple: rule.Simple{
			ValueName: "{b3f8fa53-0004-438e-9003-51a46e139bfc},3",
			Enable:    0,
			Disable:   1,
			Subkey:    "FxProperties",
		},
		Notes:   "Learned from\nSpeakers",
		Devices: []string{"{aaa}"},
	}
}

func sampleEffect() rule.EffectRule {
	return rule.EffectRule{
		Section:       "fx_fedcba9876543210",
		Name:          "Bass Boost",
		DevicePattern: "Speakers (Realtek)",
		Notes:         "stability-filtered",
		Flows:         []ir.Flow{ir.Playback},
		Devices:       []string{"{aaa}", "{bbb}"},
		Writes: []rule.WriteItem{
			{
				Scope:   ir.UserScope,
				Subkey:  "FxProperties",
				Name:    "{d04e05a6-594b-4fb6-a80d-01af5eed7d1d},5",
				Enable:  ir.DWord(1),
				Disable: ir.DWord(0),
			},
			{
				Scope:   ir.SystemScope,
				Subkey:  `Properties\Vendor`,
				Name:    "{1da5d803-d492-4edd-8c23-e0c0ffee7f0e},7",
				Enable:  ir.Binary([]byte{0x01, 0xab}),
				Disable: ir.Binary([]byte{0x00, 0xff}),
				Devices: []string{},
			},
		},
		DeciderIndex: 1,
		Quorum:       0.6,
	}
}
