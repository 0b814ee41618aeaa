package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

// Defaults written for newly learned rules.
const (
	learnedHives = "HKCU,HKLM"
	learnedFlows = "Render,Capture"
)

func joinScopes(scopes []ir.Scope, fallback string) string {
	if len(scopes) == 0 {
		return fallback
	}
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func joinFlows(flows []ir.Flow, fallback string) string {
	if len(flows) == 0 {
		return fallback
	}
	parts := make([]string, len(flows))
	for i, f := range flows {
		parts[i] = f.RegistryName()
	}
	return strings.Join(parts, ",")
}

// oneLine keeps free text on a single catalog line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func simpleLines(s rule.Simple) []string {
	return []string{
		entryLine(keyValueName, strings.ToLower(strings.TrimSpace(s.ValueName))),
		entryLine(keyDWordEnable, strconv.FormatUint(uint64(s.Enable), 10)),
		entryLine(keyDWordDisable, strconv.FormatUint(uint64(s.Disable), 10)),
		entryLine(keyHives, joinScopes(s.Hives, learnedHives)),
	}
}

func mainLines(m rule.MainRule) []string {
	lines := simpleLines(m.Simple)
	lines = append(lines,
		entryLine(keyFlows, joinFlows(m.Flows, learnedFlows)),
		entryLine(keySubkey, ir.NormalizeSubkey(m.Subkey)),
	)
	if m.Notes != "" {
		lines = append(lines, entryLine(keyNotes, oneLine(m.Notes)))
	}
	return append(lines, entryLine(keyDevices, strings.Join(m.Devices, ",")))
}

func effectLines(e rule.EffectRule) []string {
	lines := []string{
		entryLine(keyType, typeEffect),
		entryLine(keyEffectName, oneLine(e.Name)),
	}
	if e.DevicePattern != "" {
		lines = append(lines, entryLine(keyDevicePattern, oneLine(e.DevicePattern)))
	}
	if e.Compound() {
		lines = append(lines,
			entryLine(keyMultiWrite, "1"),
			entryLine(keyWriteCount, strconv.Itoa(len(e.Writes))),
			entryLine(keyDeciderIndex, strconv.Itoa(max(1, e.DeciderIndex))),
			entryLine(keyQuorum, formatQuorum(e.Quorum)),
			entryLine(keyFlows, joinFlows(e.Flows, learnedFlows)),
		)
		for i, w := range e.Writes {
			lines = append(lines, writeLines(i+1, w)...)
		}
	} else if e.Single != nil {
		lines = append(lines, simpleLines(*e.Single)...)
		lines = append(lines,
			entryLine(keyFlows, joinFlows(e.Flows, learnedFlows)),
			entryLine(keySubkey, ir.NormalizeSubkey(e.Single.Subkey)),
		)
	}
	if e.Notes != "" {
		lines = append(lines, entryLine(keyNotes, oneLine(e.Notes)))
	}
	return append(lines, entryLine(keyDevices, strings.Join(e.Devices, ",")))
}

func writeLines(i int, w rule.WriteItem) []string {
	p := fmt.Sprintf("write%d_", i)
	lines := []string{
		entryLine(p+"hive", w.Scope.String()),
		entryLine(p+"subkey", w.Subkey),
		entryLine(p+"name", strings.ToLower(w.Name)),
		entryLine(p+"type_enable", w.Enable.Type.String()),
		entryLine(p+"type_disable", w.Disable.Type.String()),
		entryLine(p+"enable", w.Enable.Text()),
		entryLine(p+"disable", w.Disable.Text()),
	}
	if w.Devices != nil {
		lines = append(lines, entryLine(p+"devices", strings.Join(w.Devices, ",")))
	}
	return lines
}

// formatQuorum writes at least two decimals ("0.60") without losing precision.
func formatQuorum(q float64) string {
	s := strconv.FormatFloat(q, 'f', -1, 64)
	switch i := strings.IndexByte(s, '.'); {
	case i < 0:
		return s + ".00"
	case len(s)-i == 2:
		return s + "0"
	}
	return s
}

func formatSection(name string, body []string) string {
	var sb strings.Builder
	sb.WriteString("[" + name + "]\n")
	for _, l := range body {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatMain renders m as catalog text.
func FormatMain(m rule.MainRule) string {
	return formatSection(m.Section, mainLines(m))
}

// FormatEffect renders e as catalog text.
func FormatEffect(e rule.EffectRule) string {
	return formatSection(e.Section, effectLines(e))
}

// Format renders every rule of c, mains first.
func Format(c *Catalog) string {
	var parts []string
	for _, m := range c.Mains {
		parts = append(parts, FormatMain(m))
	}
	for _, e := range c.Effects {
		parts = append(parts, FormatEffect(e))
	}
	return strings.Join(parts, "\n")
}
