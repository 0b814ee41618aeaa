package rule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/audioctl/internal/ir"
)

func dwordItem(scope ir.Scope, subkey, name string, en, di uint32) WriteItem {
	return WriteItem{Scope: scope, Subkey: subkey, Name: name, Enable: ir.DWord(en), Disable: ir.DWord(di)}
}

func TestWriteItem_Score(t *testing.T) {
	tests := []struct {
		name string
		item WriteItem
		want int
	}{
		{"fx dword flip", dwordItem(ir.UserScope, "FxProperties", "a", 1, 0), 8},
		{"props dword flip", dwordItem(ir.UserScope, "Properties", "a", 1, 0), 5},
		{"fx dword non-bit", dwordItem(ir.UserScope, "FxProperties", "a", 5, 9), 6},
		{"nested fx", dwordItem(ir.UserScope, `FxProperties\Vendor`, "a", 0, 1), 8},
		{"fx binary", WriteItem{Subkey: "FxProperties", Enable: ir.Binary([]byte{1}), Disable: ir.Binary([]byte{2})}, 2},
		{"props string", WriteItem{Subkey: "Properties", Enable: ir.String("a"), Disable: ir.String("b")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Score())
		})
	}
}

func TestWriteItem_Classify(t *testing.T) {
	w := WriteItem{Enable: ir.Binary([]byte{1}), Disable: ir.Binary([]byte{0})}
	assert.Equal(t, ir.On, w.Classify(ir.Binary([]byte{1})))
	assert.Equal(t, ir.Off, w.Classify(ir.Binary([]byte{0})))
	assert.Equal(t, ir.Unknown, w.Classify(ir.Binary([]byte{7})))
	assert.Equal(t, ir.Unknown, w.Classify(ir.DWord(1)), "type must match")
}

func TestWriteItem_AppliesTo(t *testing.T) {
	universal := WriteItem{}
	nobody := WriteItem{Devices: []string{}}
	scoped := WriteItem{Devices: []string{"{AAA}"}}

	assert.True(t, universal.AppliesTo("{x}"))
	assert.False(t, nobody.AppliesTo("{x}"))
	assert.True(t, scoped.AppliesTo("{aaa}"))
	assert.False(t, scoped.AppliesTo("{bbb}"))
}

func TestSimple(t *testing.T) {
	s := Simple{Enable: 0, Disable: 1}
	assert.True(t, s.Valid())
	assert.Equal(t, ir.On, s.Classify(ir.DWord(0)))
	assert.Equal(t, ir.Off, s.Classify(ir.DWord(1)))
	assert.Equal(t, ir.Unknown, s.Classify(ir.DWord(2)))
	assert.Equal(t, ir.Unknown, s.Classify(ir.String("0")))
	assert.Equal(t, uint32(1), s.Target(false))

	assert.False(t, Simple{Enable: 1, Disable: 1}.Valid())
	assert.False(t, Simple{Enable: 2, Disable: 1}.Valid())
}

func TestEffectRule_Decider(t *testing.T) {
	a := dwordItem(ir.UserScope, "FxProperties", "a", 1, 0)
	b := dwordItem(ir.UserScope, "FxProperties", "b", 1, 0)
	e := EffectRule{Writes: []WriteItem{a, b}, DeciderIndex: 2}

	d, ok := e.Decider()
	assert.True(t, ok)
	assert.Equal(t, "b", d.Name)

	e.DeciderIndex = 9
	d, _ = e.Decider()
	assert.Equal(t, "a", d.Name, "out-of-range index falls back to the first item")

	_, ok = EffectRule{}.Decider()
	assert.False(t, ok)
}

func TestEffectRule_WritesFor(t *testing.T) {
	a := dwordItem(ir.UserScope, "FxProperties", "a", 1, 0)
	b := dwordItem(ir.UserScope, "FxProperties", "b", 1, 0)
	b.Devices = []string{"{other}"}
	e := EffectRule{Writes: []WriteItem{a, b}}

	assert.Len(t, e.WritesFor("{mine}"), 1)
	assert.Len(t, e.WritesFor("{other}"), 2)
}

func TestHasFlow(t *testing.T) {
	assert.True(t, HasFlow(nil, ir.Recording))
	assert.True(t, HasFlow([]ir.Flow{ir.Playback}, ir.Playback))
	assert.False(t, HasFlow([]ir.Flow{ir.Playback}, ir.Recording))
}

func TestQuorumPolicy_Clamp(t *testing.T) {
	p := DefaultQuorumPolicy
	assert.Equal(t, 0.60, p.Clamp(0))
	assert.Equal(t, 0.60, p.Clamp(math.NaN()))
	assert.Equal(t, 0.50, p.Clamp(0.2))
	assert.Equal(t, 0.95, p.Clamp(1.0))
	assert.Equal(t, 0.75, p.Clamp(0.75))

	custom := QuorumPolicy{Default: 0.7, Min: 0.6, Max: 0.8}
	assert.Equal(t, 0.7, custom.Clamp(-1))
	assert.Equal(t, 0.8, custom.Clamp(0.99))
}
