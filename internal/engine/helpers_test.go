package engine

import (
	"testing"
	"time"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/rule"
)

const (
	testKey  = "{83a9be54-901e-4429-993b-c9088e3028a0}"
	otherKey = "{0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0}"
)

var target = Target{Key: testKey, Flow: ir.Playback}

type rig struct {
	mem *platform.Memory
	eng *Engine
}

// newRig returns an engine over a registry where both conventional
// subkeys exist in both hives.
func newRig(t *testing.T) *rig {
	t.Helper()
	mem := platform.NewMemory()
	mem.SetClock(func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) })
	for _, h := range ir.Scopes() {
		for _, root := range ir.PathRoots() {
			mem.CreateKey(h, endpoint.RootPath(testKey, ir.Playback, root))
		}
	}
	return &rig{mem: mem, eng: New(mem)}
}

func (r *rig) path(subkey string) string {
	return endpoint.KeyPath(testKey, ir.Playback, subkey)
}

func (r *rig) set(h ir.Scope, subkey, name string, v ir.Value) {
	r.mem.Set(h, r.path(subkey), name, v)
}

func mainToggle() rule.Simple {
	return rule.Simple{
		ValueName: "{b3f8fa53-0004-438e-9003-51a46e139bfc},3",
		Enable:    0,
		Disable:   1,
		Subkey:    "FxProperties",
	}
}

func item(h ir.Scope, subkey, name string, en, di ir.Value) rule.WriteItem {
	return rule.WriteItem{Scope: h, Subkey: subkey, Name: name, Enable: en, Disable: di}
}

// compound is a three-item rule: an FX DWORD flip, a Properties string
// and a binary blob. The decider is item 2.
func compound() rule.EffectRule {
	return rule.EffectRule{
		Section: "fx_test",
		Name:    "Loudness",
		Devices: []string{testKey},
		Writes: []rule.WriteItem{
			item(ir.UserScope, "FxProperties", "{a},1", ir.DWord(1), ir.DWord(0)),
			item(ir.UserScope, "Properties", "{b},2", ir.String("on"), ir.String("off")),
			item(ir.SystemScope, "FxProperties", "{c},3", ir.Binary([]byte{1}), ir.Binary([]byte{0})),
		},
		DeciderIndex: 2,
		Quorum:       0.6,
	}
}
