package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

// Field names recognized in catalog sections.
const (
	keyType          = "type"
	keyNotes         = "notes"
	keyDevices       = "devices"
	keyFlows         = "flows"
	keyHives         = "hives"
	keySubkey        = "subkey"
	keyValueName     = "value_name"
	keyDWordEnable   = "dword_enable"
	keyDWordDisable  = "dword_disable"
	keyEffectName    = "fx_name"
	keyDevicePattern = "device_name_pattern"
	keyMultiWrite    = "multi_write"
	keyWriteCount    = "write_count"
	keyDeciderIndex  = "decider_index"
	keyQuorum        = "quorum_threshold"
)

const (
	typeMain   = "main"
	typeEffect = "fx"
)

// Defaults applied when a field is absent.
const (
	defaultHives  = "HKLM,HKCU"
	defaultFlows  = "Render,Capture"
	defaultSubkey = "FxProperties"
)

var errNoDevices = errors.New("no devices listed")

// Catalog is a parsed rule set. Rules keep their file order.
type Catalog struct {
	Mains   []rule.MainRule
	Effects []rule.EffectRule
	Skipped []Skipped
}

// Skipped is a section the parser ignored.
type Skipped struct {
	Section string
	Reason  string
	Err     error
}

// Parse decodes catalog text. Compound quorum thresholds are clamped by
// policy. Parse never fails; bad sections land in Skipped.
func Parse(data []byte, policy rule.QuorumPolicy) *Catalog {
	c := &Catalog{}
	doc := parseDocument(data)
	for _, s := range doc.spans() {
		f := doc.fields(s)
		var err error
		switch kind := strings.ToLower(f.get(keyType, typeMain)); kind {
		case typeEffect:
			var e rule.EffectRule
			if e, err = parseEffect(s.name, f, policy); err == nil {
				c.Effects = append(c.Effects, e)
			}
		case typeMain:
			var m rule.MainRule
			if m, err = parseMain(s.name, f); err == nil {
				c.Mains = append(c.Mains, m)
			}
		default:
			err = fmt.Errorf("unknown section type %q", kind)
		}
		if err != nil {
			c.Skipped = append(c.Skipped, Skipped{Section: s.name, Reason: err.Error(), Err: err})
		}
	}
	return c
}

func parseMain(section string, f fields) (rule.MainRule, error) {
	s, err := parseSimple(f)
	if err != nil {
		return rule.MainRule{}, err
	}
	m := rule.MainRule{
		Section: section,
		Simple:  s,
		Flows:   parseFlows(f.get(keyFlows, defaultFlows)),
		Notes:   f.get(keyNotes, ""),
		Devices: splitList(f.get(keyDevices, "")),
	}
	if len(m.Devices) == 0 {
		return rule.MainRule{}, errNoDevices
	}
	return m, nil
}

func parseEffect(section string, f fields, policy rule.QuorumPolicy) (rule.EffectRule, error) {
	e := rule.EffectRule{
		Section:       section,
		Name:          f.get(keyEffectName, ""),
		DevicePattern: f.get(keyDevicePattern, ""),
		Notes:         f.get(keyNotes, ""),
		Flows:         parseFlows(f.get(keyFlows, defaultFlows)),
		Devices:       splitList(f.get(keyDevices, "")),
	}
	if e.Name == "" {
		return rule.EffectRule{}, &missingFieldError{key: keyEffectName}
	}

	if isTrue(f.get(keyMultiWrite, "0")) {
		n, err := strconv.Atoi(f.get(keyWriteCount, "0"))
		if err != nil || n <= 0 {
			return rule.EffectRule{}, fmt.Errorf("%s must be a positive integer", keyWriteCount)
		}
		decider, err := strconv.Atoi(f.get(keyDeciderIndex, "1"))
		if err != nil {
			decider = 1
		}
		e.DeciderIndex = max(1, decider)
		q, err := strconv.ParseFloat(f.get(keyQuorum, ""), 64)
		if err != nil {
			q = 0
		}
		e.Quorum = policy.Clamp(q)
		for i := 1; i <= n; i++ {
			w, err := parseWrite(f, i)
			if err != nil {
				return rule.EffectRule{}, fmt.Errorf("write%d: %w", i, err)
			}
			e.Writes = append(e.Writes, w)
		}
	} else {
		s, err := parseSimple(f)
		if err != nil {
			return rule.EffectRule{}, err
		}
		e.Single = &s
	}

	if len(e.Devices) == 0 {
		return rule.EffectRule{}, errNoDevices
	}
	return e, nil
}

func parseSimple(f fields) (rule.Simple, error) {
	name, err := f.require(keyValueName)
	if err != nil {
		return rule.Simple{}, err
	}
	en, err := parseDWord(f, keyDWordEnable)
	if err != nil {
		return rule.Simple{}, err
	}
	di, err := parseDWord(f, keyDWordDisable)
	if err != nil {
		return rule.Simple{}, err
	}
	s := rule.Simple{
		ValueName: strings.ToLower(name),
		Enable:    en,
		Disable:   di,
		Subkey:    ir.NormalizeSubkey(f.get(keySubkey, defaultSubkey)),
		Hives:     parseHives(f.get(keyHives, defaultHives)),
	}
	if !s.Valid() {
		return rule.Simple{}, fmt.Errorf("dword_enable=%d dword_disable=%d: want distinct 0/1 values", en, di)
	}
	return s, nil
}

func parseDWord(f fields, key string) (uint32, error) {
	text, err := f.require(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return uint32(n), nil
}

func parseWrite(f fields, i int) (rule.WriteItem, error) {
	p := fmt.Sprintf("write%d_", i)
	get := func(suffix string) (string, error) { return f.require(p + suffix) }

	hiveText, err := get("hive")
	if err != nil {
		return rule.WriteItem{}, err
	}
	scope, err := ir.ParseScope(hiveText)
	if err != nil {
		return rule.WriteItem{}, err
	}
	subkey, err := get("subkey")
	if err != nil {
		return rule.WriteItem{}, err
	}
	name, err := get("name")
	if err != nil {
		return rule.WriteItem{}, err
	}
	en, err := parseTyped(f, p+"type_enable", p+"enable")
	if err != nil {
		return rule.WriteItem{}, err
	}
	di, err := parseTyped(f, p+"type_disable", p+"disable")
	if err != nil {
		return rule.WriteItem{}, err
	}

	w := rule.WriteItem{
		Scope:   scope,
		Subkey:  strings.Trim(subkey, `\`),
		Name:    strings.ToLower(name),
		Enable:  en,
		Disable: di,
	}
	if raw, ok := f[p+"devices"]; ok {
		w.Devices = splitList(raw)
		if w.Devices == nil {
			w.Devices = []string{}
		}
	}
	return w, nil
}

func parseTyped(f fields, typeKey, valueKey string) (ir.Value, error) {
	typeText, err := f.require(typeKey)
	if err != nil {
		return ir.Value{}, err
	}
	t, err := ir.ParseValueType(typeText)
	if err != nil {
		return ir.Value{}, err
	}
	text, err := f.require(valueKey)
	if err != nil {
		return ir.Value{}, err
	}
	return ir.ParseValue(t, text)
}

func parseHives(s string) []ir.Scope {
	var out []ir.Scope
	for _, p := range strings.Split(s, ",") {
		if scope, err := ir.ParseScope(p); err == nil {
			out = append(out, scope)
		}
	}
	return out
}

func parseFlows(s string) []ir.Flow {
	var out []ir.Flow
	for _, p := range strings.Split(s, ",") {
		if flow, err := ir.ParseFlow(p); err == nil {
			out = append(out, flow)
		}
	}
	return out
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
