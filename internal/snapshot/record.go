// Package snapshot captures, stabilizes and diffs the persisted property
// state of one audio endpoint.
package snapshot

import (
	"slices"
	"strings"
	"time"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
)

// DisableSysFxFmtID is the format identifier of the canonical
// "disable enhancements" property. Value 0 means enhancements are on.
const DisableSysFxFmtID = "{e4870e26-3cc5-4cd2-ba46-ca0a9a70ed04}"

// Record is one persisted property value.
type Record struct {
	Scope   ir.Scope     `json:"hive"`
	Flow    ir.Flow      `json:"flow"`
	Path    string       `json:"path"`
	Name    string       `json:"name"`
	Type    ir.ValueType `json:"type"`
	Preview string       `json:"preview"`
	Raw     string       `json:"raw"`
}

// NewRecord builds a record from a value read at scope/flow/path.
func NewRecord(scope ir.Scope, flow ir.Flow, path, name string, v ir.Value) Record {
	return Record{
		Scope:   scope,
		Flow:    flow,
		Path:    path,
		Name:    name,
		Type:    v.Type,
		Preview: v.Preview(),
		Raw:     v.Raw(),
	}
}

// Key identifies the record's location. Paths and names compare
// case-insensitively, so both are folded.
func (r Record) Key() string {
	return strings.Join([]string{
		r.Scope.String(),
		r.Flow.RegistryName(),
		strings.ToLower(r.Path),
		strings.ToLower(r.Name),
	}, "|")
}

// Value reconstructs the exact payload.
func (r Record) Value() (ir.Value, error) {
	return ir.FromRaw(r.Type, r.Raw)
}

// Same reports whether two records carry the same type and raw payload.
func (r Record) Same(o Record) bool {
	return r.Type == o.Type && r.Raw == o.Raw
}

// IsDisableSignature reports whether the value name belongs to the
// Disable_SysFx property set.
func (r Record) IsDisableSignature() bool {
	return strings.HasPrefix(strings.ToLower(r.Name), DisableSysFxFmtID)
}

// Snapshot is the complete persisted and live state of one endpoint at
// one instant. Records are sorted by Key.
type Snapshot struct {
	DeviceID string              `json:"device_id"`
	TakenAt  time.Time           `json:"taken_at"`
	Live     []platform.LiveRead `json:"live"`
	Records  []Record            `json:"records"`
}

// Index maps record keys to records.
func (s Snapshot) Index() map[string]Record {
	m := make(map[string]Record, len(s.Records))
	for _, r := range s.Records {
		m[r.Key()] = r
	}
	return m
}

// LiveRead returns the live result with the given label.
func (s Snapshot) LiveRead(label string) (platform.LiveRead, bool) {
	for _, l := range s.Live {
		if l.Label == label {
			return l, true
		}
	}
	return platform.LiveRead{}, false
}

func sortRecords(rs []Record) {
	slices.SortFunc(rs, func(a, b Record) int {
		return strings.Compare(a.Key(), b.Key())
	})
}

func sortedKeys(m map[string]Record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
