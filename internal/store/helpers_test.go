package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/snapshot"
)

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

const deviceID = "{0.0.0.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}"

// createTestStore opens a fresh database under t.TempDir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(id string, started time.Time) Session {
	return Session{
		ID:             id,
		Kind:           KindEffect,
		DeviceID:       deviceID,
		CorrelationKey: "{83a9be54-901e-4429-993b-c9088e3028a0}",
		Flow:           ir.Playback,
		EffectName:     "Bass Boost",
		StartedAt:      started,
	}
}

func testSnapshot(flag uint32) snapshot.Snapshot {
	raw := uint32(1)
	return snapshot.Snapshot{
		DeviceID: deviceID,
		TakenAt:  t0.Add(1500 * time.Millisecond),
		Live: []platform.LiveRead{
			{Label: platform.LabelPropertyStore, Enhancements: ir.Off, Raw: &raw},
			{Label: platform.LabelPolicyConfig, Enhancements: ir.Unknown, Detail: "interface <absent>"},
		},
		Records: []snapshot.Record{
			snapshot.NewRecord(ir.UserScope, ir.Playback, "FxProperties", "{a},1", ir.DWord(flag)),
			snapshot.NewRecord(ir.SystemScope, ir.Playback, `Properties\Vendor`, "{b},2", ir.Binary([]byte{0xde, 0xad})),
			snapshot.NewRecord(ir.SystemScope, ir.Recording, "FxProperties", "{c},3", ir.Value{Type: 7, Bin: []byte{0, 0}}),
		},
	}
}
