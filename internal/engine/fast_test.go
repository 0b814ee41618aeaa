package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

var base = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func (r *rig) stamp(t *testing.T, h ir.Scope, subkey string, at time.Time) {
	t.Helper()
	require.NoError(t, r.mem.SetLastWrite(h, r.path(subkey), at))
}

func TestFastReadSimple(t *testing.T) {
	s := mainToggle()
	tests := []struct {
		name       string
		user       *ir.Value
		system     *ir.Value
		userAt     time.Time
		systemAt   time.Time
		restricted []ir.Scope
		want       ir.State
	}{
		{name: "agree", user: ptr(ir.DWord(0)), system: ptr(ir.DWord(0)), want: ir.On},
		{name: "user only", user: ptr(ir.DWord(1)), want: ir.Off},
		{name: "system only", system: ptr(ir.DWord(0)), want: ir.On},
		{
			name: "newer system wins", user: ptr(ir.DWord(0)), system: ptr(ir.DWord(1)),
			userAt: base, systemAt: base.Add(time.Second), want: ir.Off,
		},
		{
			name: "newer user wins", user: ptr(ir.DWord(0)), system: ptr(ir.DWord(1)),
			userAt: base.Add(time.Second), systemAt: base, want: ir.On,
		},
		{
			name: "tie prefers user", user: ptr(ir.DWord(1)), system: ptr(ir.DWord(0)),
			userAt: base, systemAt: base, want: ir.Off,
		},
		{
			name: "hive restriction", user: ptr(ir.DWord(0)), system: ptr(ir.DWord(1)),
			restricted: []ir.Scope{ir.SystemScope}, want: ir.Off,
		},
		{name: "nothing", want: ir.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			if tt.user != nil {
				r.set(ir.UserScope, "FxProperties", s.ValueName, *tt.user)
			}
			if tt.system != nil {
				r.set(ir.SystemScope, "FxProperties", s.ValueName, *tt.system)
			}
			if !tt.userAt.IsZero() {
				r.stamp(t, ir.UserScope, "FxProperties", tt.userAt)
				r.stamp(t, ir.SystemScope, "FxProperties", tt.systemAt)
			}
			ts := s
			ts.Hives = tt.restricted
			assert.Equal(t, tt.want, r.eng.FastReadSimple(target, ts))
		})
	}
}

func TestFastReadEffect_BestScoredItem(t *testing.T) {
	r := newRig(t)
	e := compound()
	r.set(ir.UserScope, "FxProperties", "{a},1", ir.DWord(1))
	r.set(ir.SystemScope, "FxProperties", "{c},3", ir.Binary([]byte{0}))

	assert.Equal(t, ir.On, r.eng.FastReadEffect(target, e), "only the best-scored item is read")

	r.set(ir.SystemScope, "FxProperties", "{a},1", ir.DWord(0))
	r.stamp(t, ir.UserScope, "FxProperties", base)
	r.stamp(t, ir.SystemScope, "FxProperties", base.Add(time.Minute))
	assert.Equal(t, ir.Off, r.eng.FastReadEffect(target, e), "newer alternate hive wins")
}

func TestFastReadEffect_Single(t *testing.T) {
	r := newRig(t)
	s := mainToggle()
	r.set(ir.UserScope, "FxProperties", s.ValueName, ir.DWord(0))

	assert.Equal(t, ir.On, r.eng.FastReadEffect(target, rule.EffectRule{Single: &s}))
	assert.Equal(t, ir.Unknown, r.eng.FastReadEffect(target, rule.EffectRule{}))
}
