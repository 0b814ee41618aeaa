package rule

import (
	"math"
	"slices"
	"strings"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
)

// WriteItem is one atomic registry write that is part of a rule.
type WriteItem struct {
	Scope   ir.Scope
	Subkey  string
	Name    string
	Enable  ir.Value
	Disable ir.Value

	// Devices scopes the item. nil applies to every member device; an
	// empty non-nil slice applies to none.
	Devices []string
}

// Target returns the representation that realizes enable.
func (w WriteItem) Target(enable bool) ir.Value {
	if enable {
		return w.Enable
	}
	return w.Disable
}

// AppliesTo reports whether the item is in scope for correlation key key.
func (w WriteItem) AppliesTo(key string) bool {
	if w.Devices == nil {
		return true
	}
	return HasMember(w.Devices, key)
}

// Classify maps an observed value onto the item's logical state.
func (w WriteItem) Classify(v ir.Value) ir.State {
	switch {
	case v.Equal(w.Enable):
		return ir.On
	case v.Equal(w.Disable):
		return ir.Off
	default:
		return ir.Unknown
	}
}

// Score ranks how plausible an item is as the authoritative signal.
// Items under the effects path and 0/1 DWORD pairs rank highest; binary
// payloads rank lowest.
func (w WriteItem) Score() int {
	s := 0
	if root, ok := ir.RootOf(w.Subkey); ok && root == ir.EffectsPath {
		s += 3
	}
	if w.Enable.Type == ir.TypeDWord && w.Disable.Type == ir.TypeDWord {
		s += 3
		e, ok1 := w.Enable.Flag()
		d, ok2 := w.Disable.Flag()
		if ok1 && ok2 && e != d {
			s += 2
		}
	}
	if w.Enable.Type == ir.TypeBinary || w.Disable.Type == ir.TypeBinary {
		s--
	}
	return s
}

// Simple is a single-DWORD toggle.
type Simple struct {
	ValueName string
	Enable    uint32
	Disable   uint32
	Subkey    string
	Hives     []ir.Scope
}

// Valid reports whether enable and disable are distinct 0/1 values.
func (s Simple) Valid() bool {
	return s.Enable <= 1 && s.Disable <= 1 && s.Enable != s.Disable
}

// Classify maps an observed DWORD onto the toggle's state.
func (s Simple) Classify(v ir.Value) ir.State {
	if v.Type != ir.TypeDWord {
		return ir.Unknown
	}
	switch v.DWord {
	case s.Enable:
		return ir.On
	case s.Disable:
		return ir.Off
	default:
		return ir.Unknown
	}
}

// Target returns the DWORD that realizes enable.
func (s Simple) Target(enable bool) uint32 {
	if enable {
		return s.Enable
	}
	return s.Disable
}

// MainRule controls the primary enhancements switch.
type MainRule struct {
	Section string
	Simple
	Flows   []ir.Flow
	Notes   string
	Devices []string
}

// EffectRule controls a named secondary effect. Exactly one of Single and
// Writes is set.
type EffectRule struct {
	Section       string
	Name          string
	DevicePattern string
	Notes         string
	Flows         []ir.Flow
	Devices       []string

	Single *Simple

	Writes       []WriteItem
	DeciderIndex int // 1-based index into Writes
	Quorum       float64
}

// Compound reports whether the rule is a multi-write rule.
func (e EffectRule) Compound() bool {
	return len(e.Writes) > 0
}

// Decider returns the decider write item, falling back to the first item
// when the index is out of range.
func (e EffectRule) Decider() (WriteItem, bool) {
	if len(e.Writes) == 0 {
		return WriteItem{}, false
	}
	i := e.DeciderIndex - 1
	if i < 0 || i >= len(e.Writes) {
		i = 0
	}
	return e.Writes[i], true
}

// WritesFor returns the items in scope for correlation key key, in order.
func (e EffectRule) WritesFor(key string) []WriteItem {
	var out []WriteItem
	for _, w := range e.Writes {
		if w.AppliesTo(key) {
			out = append(out, w)
		}
	}
	return out
}

// HasMember reports whether key is in devices, ignoring case and braces.
func HasMember(devices []string, key string) bool {
	key = endpoint.NormalizeKey(key)
	if key == "" {
		return false
	}
	return slices.ContainsFunc(devices, func(d string) bool {
		return endpoint.NormalizeKey(d) == key
	})
}

// HasFlow reports whether flow is allowed. An empty list allows both.
func HasFlow(flows []ir.Flow, flow ir.Flow) bool {
	return len(flows) == 0 || slices.Contains(flows, flow)
}

// NameMatches compares effect names case-insensitively.
func NameMatches(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// QuorumPolicy bounds compound-rule thresholds.
type QuorumPolicy struct {
	Default float64
	Min     float64
	Max     float64
}

// DefaultQuorumPolicy is 0.60 clamped to [0.50, 0.95].
var DefaultQuorumPolicy = QuorumPolicy{Default: 0.60, Min: 0.50, Max: 0.95}

// Clamp replaces unset or non-finite thresholds with the default and
// clamps the result into [Min, Max].
func (p QuorumPolicy) Clamp(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = p.Default
	}
	return math.Min(math.Max(q, p.Min), p.Max)
}
