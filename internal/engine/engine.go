package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/rule"
)

// defaultHives is the write order when a simple rule lists none.
var defaultHives = []ir.Scope{ir.UserScope, ir.SystemScope}

// Target addresses one endpoint key and flow.
type Target struct {
	Key  string
	Flow ir.Flow
}

func (t Target) path(subkey string) string {
	return endpoint.KeyPath(t.Key, t.Flow, subkey)
}

// Engine applies and reads rules through a Registry.
type Engine struct {
	registry platform.Registry
	policy   rule.QuorumPolicy
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for read and write decisions.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithQuorumPolicy sets the bounds applied to compound thresholds at read time.
func WithQuorumPolicy(p rule.QuorumPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// New returns an engine over registry.
func New(registry platform.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		policy:   rule.DefaultQuorumPolicy,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplySimple writes the enable or disable DWORD of s under its subkey
// in every configured hive. It succeeds when at least one hive accepts
// the write.
func (e *Engine) ApplySimple(t Target, s rule.Simple, enable bool) error {
	hives := s.Hives
	if len(hives) == 0 {
		hives = defaultHives
	}
	path := t.path(s.Subkey)
	v := ir.DWord(s.Target(enable))

	var errs []error
	wrote := 0
	for _, h := range hives {
		if err := e.registry.WriteValue(h, path, s.ValueName, v); err != nil {
			e.logger.Debug("simple write failed", "hive", h, "path", path, "name", s.ValueName, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", h, err))
			continue
		}
		wrote++
	}
	e.logger.Debug("simple rule applied", "name", s.ValueName, "enable", enable, "hives_written", wrote, "hives", len(hives))
	if wrote == 0 {
		return NewWriteFailureError(fmt.Sprintf("no hive accepted %s", s.ValueName), errors.Join(errs...))
	}
	return nil
}

// ReadSimple reads the DWORD of s from the user hive, then the system
// hive. The first hive holding the enable or disable value decides.
func (e *Engine) ReadSimple(t Target, s rule.Simple) ir.State {
	path := t.path(s.Subkey)
	for _, h := range defaultHives {
		v, err := e.registry.ReadValue(h, path, s.ValueName)
		if err != nil {
			e.logger.Debug("simple read failed", "hive", h, "path", path, "name", s.ValueName, "error", err)
			continue
		}
		if st := s.Classify(v); st.IsKnown() {
			e.logger.Debug("simple rule read", "hive", h, "name", s.ValueName, "state", st)
			return st
		}
	}
	return ir.Unknown
}

// ApplyCompound writes every item's enable or disable representation. Any
// failed write fails the whole apply, although the remaining items are
// still attempted.
func (e *Engine) ApplyCompound(t Target, writes []rule.WriteItem, enable bool) error {
	if len(writes) == 0 {
		return NewWriteFailureError("no write items apply to this endpoint", nil)
	}
	var errs []error
	for _, w := range writes {
		path := t.path(w.Subkey)
		if err := e.registry.WriteValue(w.Scope, path, w.Name, w.Target(enable)); err != nil {
			e.logger.Debug("compound write failed", "hive", w.Scope, "path", path, "name", w.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s %s\\%s: %w", w.Scope, w.Subkey, w.Name, err))
		}
	}
	e.logger.Debug("compound rule applied", "enable", enable, "items", len(writes), "failed", len(errs))
	if len(errs) > 0 {
		return NewWriteFailureError(fmt.Sprintf("%d of %d writes failed", len(errs), len(writes)), errors.Join(errs...))
	}
	return nil
}

// ReadItem classifies one item, trying its recorded hive and then the
// alternate hive.
func (e *Engine) ReadItem(t Target, w rule.WriteItem) ir.State {
	path := t.path(w.Subkey)
	for _, h := range []ir.Scope{w.Scope, w.Scope.Alternate()} {
		v, err := e.registry.ReadValue(h, path, w.Name)
		if err != nil {
			continue
		}
		if st := w.Classify(v); st.IsKnown() {
			return st
		}
	}
	return ir.Unknown
}

// ReadEffect reads an effect rule of either variant.
func (e *Engine) ReadEffect(t Target, r rule.EffectRule) ir.State {
	if r.Compound() {
		return e.ReadQuorum(t, r).State
	}
	if r.Single != nil {
		return e.ReadSimple(t, *r.Single)
	}
	return ir.Unknown
}

// ApplyEffect writes an effect rule of either variant, honoring per-item
// device scoping for compound rules.
func (e *Engine) ApplyEffect(t Target, r rule.EffectRule, enable bool) error {
	if r.Compound() {
		return e.ApplyCompound(t, r.WritesFor(t.Key), enable)
	}
	if r.Single != nil {
		return e.ApplySimple(t, *r.Single, enable)
	}
	return NewWriteFailureError(fmt.Sprintf("effect rule %s has no writes", r.Section), nil)
}
