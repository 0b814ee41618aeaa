package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/audioctl/internal/catalog"
	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
)

// AssertionContext is the final state assertions inspect.
type AssertionContext struct {
	Catalog   *catalog.Catalog
	Registry  *platform.Memory
	Endpoints []endpoint.Endpoint
}

// AssertionError carries the expected and actual outcome of a failed
// assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var msgs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertCatalogSections:
		return assertCatalogSections(actx.Catalog, a)
	case AssertCatalogContains:
		return assertCatalogContains(actx.Catalog, a)
	case AssertRegistryValue:
		return assertRegistryValue(actx, a)
	case AssertWrites:
		return assertWrites(actx.Registry, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCatalogSections(c *catalog.Catalog, a Assertion) error {
	check := func(what string, want *int, got int) error {
		if want == nil || *want == got {
			return nil
		}
		return &AssertionError{
			Type:     AssertCatalogSections,
			Expected: fmt.Sprintf("%d %s", *want, what),
			Actual:   fmt.Sprintf("%d %s", got, what),
		}
	}
	if err := check("main rules", a.Mains, len(c.Mains)); err != nil {
		return err
	}
	if err := check("effect rules", a.Effects, len(c.Effects)); err != nil {
		return err
	}
	return check("skipped sections", a.Skipped, len(c.Skipped))
}

func assertCatalogContains(c *catalog.Catalog, a Assertion) error {
	text := catalog.Format(c)
	if strings.Contains(text, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCatalogContains,
		Expected: fmt.Sprintf("catalog containing %q", a.Text),
		Actual:   text,
	}
}

func assertRegistryValue(actx *AssertionContext, a Assertion) error {
	ep := actx.Endpoints[0]
	if a.Device != "" {
		for _, e := range actx.Endpoints {
			if e.ID == a.Device {
				ep = e
			}
		}
	}
	t, err := ir.ParseValueType(a.ValueType)
	if err != nil {
		return err
	}
	want, err := ir.ParseValue(t, a.Data)
	if err != nil {
		return err
	}
	got, err := actx.Registry.ReadValue(a.Hive, registryPath(ep, a.Subkey), a.Name)
	if err != nil {
		return &AssertionError{
			Type:     AssertRegistryValue,
			Expected: fmt.Sprintf("%s %s\\%s = %s", a.Hive, a.Subkey, a.Name, want.Text()),
			Actual:   err.Error(),
		}
	}
	if !got.Equal(want) {
		return &AssertionError{
			Type:     AssertRegistryValue,
			Expected: fmt.Sprintf("%s %s\\%s = %s %s", a.Hive, a.Subkey, a.Name, want.Type, want.Text()),
			Actual:   fmt.Sprintf("%s %s", got.Type, got.Text()),
		}
	}
	return nil
}

// assertWrites counts successful registry writes made by the flow.
func assertWrites(m *platform.Memory, a Assertion) error {
	n := 0
	for _, w := range m.Writes() {
		if w.Err == nil {
			n++
		}
	}
	if n == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertWrites,
		Expected: fmt.Sprintf("%d successful writes", *a.Count),
		Actual:   fmt.Sprintf("%d", n),
	}
}
