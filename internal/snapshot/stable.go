package snapshot

// Stabilize keeps only records whose type and raw payload are identical
// in every sample. A key missing from any sample counts as variance.
func Stabilize(samples []Snapshot) map[string]Record {
	stable := make(map[string]Record)
	if len(samples) == 0 {
		return stable
	}
	for k, r := range samples[0].Index() {
		stable[k] = r
	}
	for _, s := range samples[1:] {
		idx := s.Index()
		for k, r := range stable {
			other, ok := idx[k]
			if !ok || !r.Same(other) {
				delete(stable, k)
			}
		}
	}
	return stable
}
