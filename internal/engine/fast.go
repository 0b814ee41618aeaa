package engine

import (
	"slices"
	"time"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

// hiveRead is one classified read with the key's last-write time.
type hiveRead struct {
	state   ir.State
	written time.Time
}

// resolve merges two hive reads. When both are known and disagree, the
// more recently written key wins; ties go to preferred.
func resolve(preferred, other hiveRead) ir.State {
	switch {
	case !preferred.state.IsKnown():
		return other.state
	case !other.state.IsKnown(), preferred.state == other.state:
		return preferred.state
	case !preferred.written.IsZero() && !other.written.IsZero() && other.written.After(preferred.written):
		return other.state
	default:
		return preferred.state
	}
}

func (e *Engine) readAt(t Target, scope ir.Scope, subkey, name string, classify func(ir.Value) ir.State) hiveRead {
	path := t.path(subkey)
	var r hiveRead
	if v, err := e.registry.ReadValue(scope, path, name); err == nil {
		r.state = classify(v)
	}
	if ts, err := e.registry.LastWrite(scope, path); err == nil {
		r.written = ts
	}
	return r
}

// FastReadSimple reads s once in each allowed hive with no fallbacks.
// Disagreeing hives are settled by key last-write time, ties preferring
// the user hive.
func (e *Engine) FastReadSimple(t Target, s rule.Simple) ir.State {
	allowed := func(h ir.Scope) bool {
		return len(s.Hives) == 0 || slices.Contains(s.Hives, h)
	}
	var user, system hiveRead
	if allowed(ir.UserScope) {
		user = e.readAt(t, ir.UserScope, s.Subkey, s.ValueName, s.Classify)
	}
	if allowed(ir.SystemScope) {
		system = e.readAt(t, ir.SystemScope, s.Subkey, s.ValueName, s.Classify)
	}
	st := resolve(user, system)
	e.logger.Debug("fast read", "name", s.ValueName, "user", user.state, "system", system.state, "state", st)
	return st
}

// FastReadEffect reads only the best-scored applicable item of a compound
// rule, in its recorded hive and the alternate. Single rules use
// FastReadSimple.
func (e *Engine) FastReadEffect(t Target, r rule.EffectRule) ir.State {
	if !r.Compound() {
		if r.Single == nil {
			return ir.Unknown
		}
		return e.FastReadSimple(t, *r.Single)
	}
	writes := ByScore(r.WritesFor(t.Key))
	if len(writes) == 0 {
		return ir.Unknown
	}
	w := writes[0]
	recorded := e.readAt(t, w.Scope, w.Subkey, w.Name, w.Classify)
	alternate := e.readAt(t, w.Scope.Alternate(), w.Subkey, w.Name, w.Classify)
	return resolve(recorded, alternate)
}
