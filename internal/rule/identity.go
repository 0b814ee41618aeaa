package rule

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/audioctl/internal/ir"
)

// Section name prefixes for newly learned rules.
const (
	MainSectionPrefix   = "main_"
	EffectSectionPrefix = "fx_"
)

// sectionDigestLen is the number of digest hex characters kept in a section name.
const sectionDigestLen = 16

// Identity is the content digest of a rule's normalized form.
type Identity string

// Section derives the catalog section name for the identity.
func (id Identity) Section(prefix string) string {
	s := string(id)
	if len(s) > sectionDigestLen {
		s = s[:sectionDigestLen]
	}
	return prefix + s
}

// normalizeName folds a value name for identity purposes.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func simpleFields(variant string, s Simple) map[string]any {
	return map[string]any{
		"variant":    variant,
		"value_name": normalizeName(s.ValueName),
		"enable":     strconv.FormatUint(uint64(s.Enable), 10),
		"disable":    strconv.FormatUint(uint64(s.Disable), 10),
	}
}

// NormalizedItem returns the identity tuple of a write item: hive
// upper-cased, subkey and name lower-cased, types upper-cased and values
// stringified.
func NormalizedItem(w WriteItem) []string {
	return []string{
		strings.ToUpper(w.Scope.String()),
		strings.ToLower(strings.Trim(w.Subkey, `\ `)),
		normalizeName(w.Name),
		strings.ToUpper(w.Enable.Type.String()),
		w.Enable.Text(),
		strings.ToUpper(w.Disable.Type.String()),
		w.Disable.Text(),
	}
}

// FormatQuorum renders a threshold rounded to six decimal places.
func FormatQuorum(q float64) string {
	return strconv.FormatFloat(math.Round(q*1e6)/1e6, 'f', 6, 64)
}

// CompoundIdentity digests a normalized write-item list with its decider
// index and quorum threshold. Item order does not matter.
func CompoundIdentity(writes []WriteItem, deciderIndex int, quorum float64) Identity {
	items := make([][]string, len(writes))
	for i, w := range writes {
		items[i] = NormalizedItem(w)
	}
	slices.SortFunc(items, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	arr := make([]any, len(items))
	for i, it := range items {
		arr[i] = it
	}
	return Identity(ir.MustDigest(ir.DomainEffectRule, map[string]any{
		"variant": "effect-compound",
		"writes":  arr,
		"decider": deciderIndex,
		"quorum":  FormatQuorum(quorum),
	}))
}

// Identity digests the rule's value name and enable/disable pair.
func (m MainRule) Identity() Identity {
	return Identity(ir.MustDigest(ir.DomainMainRule, simpleFields("main", m.Simple)))
}

// CanonicalSection is the section name a newly learned copy of m would get.
func (m MainRule) CanonicalSection() string {
	return m.Identity().Section(MainSectionPrefix)
}

// Identity digests the rule's writes; names and notes are ignored.
func (e EffectRule) Identity() Identity {
	if e.Compound() {
		return CompoundIdentity(e.Writes, e.DeciderIndex, e.Quorum)
	}
	if e.Single != nil {
		return Identity(ir.MustDigest(ir.DomainEffectRule, simpleFields("effect-single", *e.Single)))
	}
	return Identity(ir.MustDigest(ir.DomainEffectRule, map[string]any{"variant": "effect-empty"}))
}

// CanonicalSection is the section name a newly learned copy of e would get.
func (e EffectRule) CanonicalSection() string {
	return e.Identity().Section(EffectSectionPrefix)
}

// IdenticalMain reports structural identity, ignoring section, notes and members.
func IdenticalMain(a, b MainRule) bool {
	return a.Identity() == b.Identity()
}

// IdenticalEffect reports structural identity of two effect rules of the
// same variant, ignoring name, notes and members.
func IdenticalEffect(a, b EffectRule) bool {
	if a.Compound() != b.Compound() {
		return false
	}
	return a.Identity() == b.Identity()
}
