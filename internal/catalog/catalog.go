package catalog

import (
	"strings"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

// Len is the number of usable rules.
func (c *Catalog) Len() int {
	return len(c.Mains) + len(c.Effects)
}

// HasSection reports whether a usable rule is stored under name.
func (c *Catalog) HasSection(name string) bool {
	for _, m := range c.Mains {
		if strings.EqualFold(m.Section, name) {
			return true
		}
	}
	for _, e := range c.Effects {
		if strings.EqualFold(e.Section, name) {
			return true
		}
	}
	return false
}

// MainsFor returns the main rules that list key as a member and allow
// flow, in file order.
func (c *Catalog) MainsFor(key string, flow ir.Flow) []rule.MainRule {
	var out []rule.MainRule
	for _, m := range c.Mains {
		if rule.HasMember(m.Devices, key) && rule.HasFlow(m.Flows, flow) {
			out = append(out, m)
		}
	}
	return out
}

// FindApplicable returns the first member main rule whose value exists
// for the endpoint, falling back to the first member rule.
func (c *Catalog) FindApplicable(key string, flow ir.Flow, exists func(rule.MainRule) bool) (rule.MainRule, bool) {
	candidates := c.MainsFor(key, flow)
	if len(candidates) == 0 {
		return rule.MainRule{}, false
	}
	if exists != nil {
		for _, m := range candidates {
			if exists(m) {
				return m, true
			}
		}
	}
	return candidates[0], true
}

// Supported reports whether any main rule lists key, regardless of flow.
func (c *Catalog) Supported(key string) bool {
	for _, m := range c.Mains {
		if rule.HasMember(m.Devices, key) {
			return true
		}
	}
	return false
}

// EffectsFor returns the effect rules that list key and allow flow.
func (c *Catalog) EffectsFor(key string, flow ir.Flow) []rule.EffectRule {
	var out []rule.EffectRule
	for _, e := range c.Effects {
		if rule.HasMember(e.Devices, key) && rule.HasFlow(e.Flows, flow) {
			out = append(out, e)
		}
	}
	return out
}

// FindEffect returns the effect rules named name that apply to key.
func (c *Catalog) FindEffect(key string, flow ir.Flow, name string) []rule.EffectRule {
	var out []rule.EffectRule
	for _, e := range c.EffectsFor(key, flow) {
		if rule.NameMatches(e.Name, name) {
			out = append(out, e)
		}
	}
	return out
}

// EffectsNamed returns every effect rule named name, members or not.
func (c *Catalog) EffectsNamed(name string) []rule.EffectRule {
	var out []rule.EffectRule
	for _, e := range c.Effects {
		if rule.NameMatches(e.Name, name) {
			out = append(out, e)
		}
	}
	return out
}

// FindIdenticalMain returns an existing main rule structurally identical to m.
func (c *Catalog) FindIdenticalMain(m rule.MainRule) (rule.MainRule, bool) {
	for _, existing := range c.Mains {
		if rule.IdenticalMain(existing, m) {
			return existing, true
		}
	}
	return rule.MainRule{}, false
}

// FindIdenticalEffect returns an existing effect rule of the same variant
// structurally identical to e.
func (c *Catalog) FindIdenticalEffect(e rule.EffectRule) (rule.EffectRule, bool) {
	for _, existing := range c.Effects {
		if rule.IdenticalEffect(existing, e) {
			return existing, true
		}
	}
	return rule.EffectRule{}, false
}
