package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/platform"
)

// Scenario is one end-to-end run against a simulated machine: a registry
// fixture, a sequence of steps and assertions on the final state.
type Scenario struct {
	// Name identifies the scenario and names its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Registry is the simulated machine. Steps address its first endpoint
	// unless they name another.
	Registry platform.Fixture `yaml:"registry"`

	// Catalog is optional catalog text present before the first step.
	Catalog string `yaml:"catalog,omitempty"`

	Flow       []Step      `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action. Which fields matter depends on Do.
type Step struct {
	Do string `yaml:"do"`

	// Device selects the endpoint by device ID.
	Device string `yaml:"device,omitempty"`

	// Registry edits (set, delete, deny_writes). Hive defaults to HKCU.
	Hive   ir.Scope `yaml:"hive,omitempty"`
	Subkey string   `yaml:"subkey,omitempty"`
	Name   string   `yaml:"name,omitempty"`
	Type   string   `yaml:"type,omitempty"`
	Data   string   `yaml:"data,omitempty"`
	Deny   bool     `yaml:"deny,omitempty"`

	// Label names the snapshot a capture step stores.
	Label string `yaml:"label,omitempty"`

	// Captures lists snapshot labels consumed by learn, learn_fx and
	// discover, in A, B, A2, B2 order.
	Captures []string `yaml:"captures,omitempty"`

	Effect string `yaml:"effect,omitempty"`
	Enable bool   `yaml:"enable,omitempty"`
	Fast   bool   `yaml:"fast,omitempty"`

	// Expect is checked against the step outcome. Nil means the step must
	// not fail.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset match on a step outcome. Unset fields are ignored.
type Expect struct {
	// Error is the expected taxonomy code, e.g. NOT_SUPPORTED.
	Error string `yaml:"error,omitempty"`

	State        string   `yaml:"state,omitempty"`
	Section      string   `yaml:"section,omitempty"`
	VerifiedBy   string   `yaml:"verified_by,omitempty"`
	Deduplicated *bool    `yaml:"deduplicated,omitempty"`
	MultiWrite   *bool    `yaml:"multi_write,omitempty"`
	WriteCount   int      `yaml:"write_count,omitempty"`
	Supported    *bool    `yaml:"supported,omitempty"`
	Effects      []string `yaml:"effects,omitempty"`
}

// Assertion checks the final catalog or registry.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// catalog_sections
	Mains   *int `yaml:"mains,omitempty"`
	Effects *int `yaml:"effects,omitempty"`
	Skipped *int `yaml:"skipped,omitempty"`

	// catalog_contains
	Text string `yaml:"text,omitempty"`

	// registry_value
	Device    string   `yaml:"device,omitempty"`
	Hive      ir.Scope `yaml:"hive,omitempty"`
	Subkey    string   `yaml:"subkey,omitempty"`
	Name      string   `yaml:"name,omitempty"`
	ValueType string   `yaml:"value_type,omitempty"`
	Data      string   `yaml:"data,omitempty"`

	// writes
	Count *int `yaml:"count,omitempty"`
}

// Step actions.
const (
	DoSet        = "set"
	DoDelete     = "delete"
	DoDenyWrites = "deny_writes"
	DoCapture    = "capture"
	DoLearn      = "learn"
	DoLearnFX    = "learn_fx"
	DoApply      = "apply"
	DoFXApply    = "fx_apply"
	DoRead       = "read"
	DoFXRead     = "fx_read"
	DoSupported  = "supported"
	DoFXList     = "fx_list"
	DoFXForget   = "fx_forget"
	DoDiscover   = "discover"
)

// Assertion types.
const (
	AssertCatalogSections = "catalog_sections"
	AssertCatalogContains = "catalog_contains"
	AssertRegistryValue   = "registry_value"
	AssertWrites          = "writes"
)

var knownSteps = []string{
	DoSet, DoDelete, DoDenyWrites, DoCapture, DoLearn, DoLearnFX, DoApply,
	DoFXApply, DoRead, DoFXRead, DoSupported, DoFXList, DoFXForget, DoDiscover,
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Registry.Endpoints) == 0 {
		return fmt.Errorf("registry.endpoints must declare at least one endpoint")
	}
	if err := s.Registry.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	labels := map[string]bool{}
	for i, step := range s.Flow {
		if err := validateStep(i, step, s, labels); err != nil {
			return err
		}
		if step.Do == DoCapture {
			labels[step.Label] = true
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step, s *Scenario, labels map[string]bool) error {
	if !slices.Contains(knownSteps, step.Do) {
		return fmt.Errorf("flow[%d]: unknown step %q", i, step.Do)
	}
	if step.Device != "" {
		if _, ok := s.Registry.Endpoint(step.Device); !ok {
			return fmt.Errorf("flow[%d]: device %q is not declared", i, step.Device)
		}
	}
	switch step.Do {
	case DoSet:
		if step.Name == "" || step.Type == "" {
			return fmt.Errorf("flow[%d]: set needs name and type", i)
		}
		t, err := ir.ParseValueType(step.Type)
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		if _, err := ir.ParseValue(t, step.Data); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	case DoDelete:
		if step.Name == "" {
			return fmt.Errorf("flow[%d]: delete needs name", i)
		}
	case DoCapture:
		if step.Label == "" {
			return fmt.Errorf("flow[%d]: capture needs label", i)
		}
	case DoLearn, DoDiscover:
		if len(step.Captures) != 2 {
			return fmt.Errorf("flow[%d]: %s needs two captures", i, step.Do)
		}
	case DoLearnFX:
		if len(step.Captures) != 2 && len(step.Captures) != 4 {
			return fmt.Errorf("flow[%d]: learn_fx needs two or four captures", i)
		}
	case DoFXApply, DoFXRead, DoFXForget:
		if step.Effect == "" {
			return fmt.Errorf("flow[%d]: %s needs effect", i, step.Do)
		}
	}
	for _, l := range step.Captures {
		if !labels[l] {
			return fmt.Errorf("flow[%d]: capture %q is not taken before use", i, l)
		}
	}
	return nil
}

func validateAssertion(i int, a Assertion) error {
	switch a.Type {
	case AssertCatalogSections:
		if a.Mains == nil && a.Effects == nil && a.Skipped == nil {
			return fmt.Errorf("assertions[%d]: catalog_sections needs mains, effects or skipped", i)
		}
	case AssertCatalogContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: catalog_contains needs text", i)
		}
	case AssertRegistryValue:
		if a.Name == "" || a.ValueType == "" {
			return fmt.Errorf("assertions[%d]: registry_value needs name and value_type", i)
		}
		if _, err := ir.ParseValueType(a.ValueType); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	case AssertWrites:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: writes needs count", i)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
	}
	return nil
}
