package rule

import (
	"cmp"
	"errors"
	"slices"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/snapshot"
)

// ErrNoCandidate is returned when a diff contains no usable toggle.
var ErrNoCandidate = errors.New("no suitable candidate")

func pathRank(rel string) int {
	if root, ok := ir.RootOf(rel); ok && root == ir.EffectsPath {
		return 0
	}
	return 1
}

func scopeRank(s ir.Scope) int {
	if s == ir.UserScope {
		return 0
	}
	return 1
}

// BuildSingle picks the most plausible 0/1 DWORD flip from diff. Flips
// under the effects path rank first, then flips in the user hive, then
// key order. Enable is the value before the toggle, disable the value after.
func BuildSingle(diff snapshot.Result) (WriteItem, error) {
	if len(diff.Flips) == 0 {
		return WriteItem{}, ErrNoCandidate
	}
	flips := slices.Clone(diff.Flips)
	slices.SortStableFunc(flips, func(a, b snapshot.Change) int {
		return cmp.Or(
			cmp.Compare(pathRank(a.Before.Path), pathRank(b.Before.Path)),
			cmp.Compare(scopeRank(a.Before.Scope), scopeRank(b.Before.Scope)),
			cmp.Compare(a.Before.Key(), b.Before.Key()),
		)
	})
	best := flips[0]
	enable, err := best.Before.Value()
	if err != nil {
		return WriteItem{}, err
	}
	disable, err := best.After.Value()
	if err != nil {
		return WriteItem{}, err
	}
	return WriteItem{
		Scope:   best.Before.Scope,
		Subkey:  best.Before.Path,
		Name:    best.Before.Name,
		Enable:  enable,
		Disable: disable,
	}, nil
}

// BuildCompound turns every key present in both stabilized maps with the
// same supported type and a different payload into a write item. Items
// are sorted by Score, highest first, so the first item is the default
// decider.
func BuildCompound(stableA, stableB map[string]snapshot.Record) []WriteItem {
	type scored struct {
		key  string
		item WriteItem
	}
	var items []scored
	for key, a := range stableA {
		b, ok := stableB[key]
		if !ok || a.Type != b.Type || !a.Type.Supported() || a.Raw == b.Raw {
			continue
		}
		enable, err := a.Value()
		if err != nil {
			continue
		}
		disable, err := b.Value()
		if err != nil {
			continue
		}
		items = append(items, scored{key: key, item: WriteItem{
			Scope:   a.Scope,
			Subkey:  a.Path,
			Name:    a.Name,
			Enable:  enable,
			Disable: disable,
		}})
	}
	slices.SortFunc(items, func(x, y scored) int {
		return cmp.Or(
			cmp.Compare(y.item.Score(), x.item.Score()),
			cmp.Compare(x.key, y.key),
		)
	})
	out := make([]WriteItem, len(items))
	for i, s := range items {
		out[i] = s.item
	}
	return out
}

// FilterFlow keeps only the records captured under flow.
func FilterFlow(m map[string]snapshot.Record, flow ir.Flow) map[string]snapshot.Record {
	out := make(map[string]snapshot.Record, len(m))
	for k, r := range m {
		if r.Flow == flow {
			out[k] = r
		}
	}
	return out
}

// SimpleFromItem converts a DWORD write item into a single toggle rooted
// at its path root.
func SimpleFromItem(w WriteItem) (Simple, bool) {
	if w.Enable.Type != ir.TypeDWord || w.Disable.Type != ir.TypeDWord {
		return Simple{}, false
	}
	return Simple{
		ValueName: w.Name,
		Enable:    w.Enable.DWord,
		Disable:   w.Disable.DWord,
		Subkey:    ir.NormalizeSubkey(w.Subkey),
	}, true
}
