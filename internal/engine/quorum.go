package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

// Source names the layer that decided a compound read.
type Source string

const (
	SourceQuorum  Source = "quorum"
	SourceDecider Source = "decider"
	SourceBest    Source = "best-scored"
	SourceNone    Source = "none"
)

// QuorumResult is the outcome of a compound read with its tally.
type QuorumResult struct {
	State     ir.State `json:"state"`
	Source    Source   `json:"source"`
	True      int      `json:"votes_on"`
	False     int      `json:"votes_off"`
	Items     int      `json:"items"`
	Threshold float64  `json:"threshold"`
}

// Vote applies the quorum rule to a tally. Abstentions are not counted.
// One side wins when its fraction reaches q while the other side's stays
// below q.
func Vote(on, off int, q float64) (ir.State, bool) {
	total := on + off
	if total == 0 {
		return ir.Unknown, false
	}
	fOn := float64(on) / float64(total)
	fOff := float64(off) / float64(total)
	switch {
	case fOn >= q && fOff < q:
		return ir.On, true
	case fOff >= q && fOn < q:
		return ir.Off, true
	default:
		return ir.Unknown, false
	}
}

// ByScore returns writes ordered by descending Score. Equal scores keep
// their catalog order.
func ByScore(writes []rule.WriteItem) []rule.WriteItem {
	out := slices.Clone(writes)
	slices.SortStableFunc(out, func(a, b rule.WriteItem) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	return out
}

// ReadQuorum decides the state of a compound rule for t. Only items
// scoped to t's key take part.
func (e *Engine) ReadQuorum(t Target, r rule.EffectRule) QuorumResult {
	writes := r.WritesFor(t.Key)
	res := QuorumResult{
		State:     ir.Unknown,
		Source:    SourceNone,
		Items:     len(writes),
		Threshold: e.policy.Clamp(r.Quorum),
	}
	if len(writes) == 0 {
		return res
	}

	for _, w := range writes {
		switch e.ReadItem(t, w) {
		case ir.On:
			res.True++
		case ir.Off:
			res.False++
		}
	}
	e.logger.Debug("quorum tally",
		"section", r.Section,
		"on", res.True,
		"off", res.False,
		"items", res.Items,
		"threshold", res.Threshold)

	if st, ok := Vote(res.True, res.False, res.Threshold); ok {
		res.State, res.Source = st, SourceQuorum
		return res
	}

	if d, ok := r.Decider(); ok && d.AppliesTo(t.Key) {
		if st := e.ReadItem(t, d); st.IsKnown() {
			res.State, res.Source = st, SourceDecider
			return res
		}
	}

	for _, w := range ByScore(writes) {
		if st := e.ReadItem(t, w); st.IsKnown() {
			res.State, res.Source = st, SourceBest
			return res
		}
	}
	return res
}
