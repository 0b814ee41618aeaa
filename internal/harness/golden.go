package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/audioctl/internal/ir"
)

// TraceSnapshot is the golden form of a run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts s for ir.MarshalCanonical, which only takes
// maps, slices and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		trace[i] = map[string]any{
			"step":    ev.Step,
			"do":      ev.Do,
			"outcome": ev.Outcome,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
	}
}

// TraceJSON renders the trace of r as canonical JSON with a trailing
// newline.
func TraceJSON(name string, r *Result) ([]byte, error) {
	snap := TraceSnapshot{ScenarioName: name, Trace: r.Trace}
	data, err := ir.MarshalCanonical(snap.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs scenario in a temporary directory and compares its
// trace with testdata/golden/{name}.trace.golden and its final catalog
// with testdata/golden/{name}.catalog.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, t.TempDir())
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return result, err
	}
	return result, nil
}

// AssertGolden compares an existing result with the golden files of name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	trace, err := TraceJSON(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name+".trace", trace)
	g.Assert(t, name+".catalog", []byte(result.Catalog))
	return nil
}
