package snapshot

import "github.com/roach88/audioctl/internal/ir"

// Change is a record observed at the same key in both snapshots with a
// different type or payload.
type Change struct {
	Before Record `json:"before"`
	After  Record `json:"after"`
}

// IsFlip reports whether the change is a DWORD moving between 0 and 1.
func (c Change) IsFlip() bool {
	if c.Before.Type != ir.TypeDWord || c.After.Type != ir.TypeDWord {
		return false
	}
	return isBit(c.Before.Raw) && isBit(c.After.Raw) && c.Before.Raw != c.After.Raw
}

func isBit(raw string) bool {
	return raw == "0" || raw == "1"
}

// Result is the structural difference between two snapshots. Every list
// is sorted by record key.
type Result struct {
	Added       []Record `json:"added"`
	Removed     []Record `json:"removed"`
	Changed     []Change `json:"changed"`
	Flips       []Change `json:"flips"`
	DisableHits []Change `json:"disable_hits"`
}

// Empty reports whether nothing differs.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Diff compares the records of a and b.
func Diff(a, b Snapshot) Result {
	return DiffMaps(a.Index(), b.Index())
}

// DiffMaps compares two keyed record maps, typically stabilized ones.
func DiffMaps(a, b map[string]Record) Result {
	var res Result
	for _, k := range sortedKeys(a) {
		ra := a[k]
		rb, ok := b[k]
		if !ok {
			res.Removed = append(res.Removed, ra)
			continue
		}
		if ra.Same(rb) {
			continue
		}
		c := Change{Before: ra, After: rb}
		res.Changed = append(res.Changed, c)
		if c.IsFlip() {
			res.Flips = append(res.Flips, c)
		}
		if ra.IsDisableSignature() {
			res.DisableHits = append(res.DisableHits, c)
		}
	}
	for _, k := range sortedKeys(b) {
		if _, ok := a[k]; !ok {
			res.Added = append(res.Added, b[k])
		}
	}
	return res
}
