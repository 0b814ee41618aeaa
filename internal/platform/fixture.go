package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
)

// Fixture describes a simulated machine: endpoints, their persisted keys
// and live probe answers.
type Fixture struct {
	Endpoints  []FixtureEndpoint `yaml:"endpoints"`
	Keys       []FixtureKey      `yaml:"keys"`
	DenyWrites []ir.Scope        `yaml:"deny_writes,omitempty"`
}

// FixtureEndpoint declares one device.
type FixtureEndpoint struct {
	ID   string              `yaml:"id"`
	Flow ir.Flow             `yaml:"flow"`
	Name string              `yaml:"name,omitempty"`
	Live map[string]ir.State `yaml:"live,omitempty"`
}

// FixtureKey declares one registry key. Either Path is a full path, or
// Device (a device ID) plus Subkey locate it under the endpoint key.
type FixtureKey struct {
	Hive   ir.Scope       `yaml:"hive"`
	Path   string         `yaml:"path,omitempty"`
	Device string         `yaml:"device,omitempty"`
	Flow   ir.Flow        `yaml:"flow,omitempty"`
	Subkey string         `yaml:"subkey,omitempty"`
	Values []FixtureValue `yaml:"values,omitempty"`
}

// FixtureValue is a value in catalog text form.
type FixtureValue struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Data string `yaml:"data"`
}

// LoadFixture parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture YAML. Unknown fields are rejected.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks device IDs, key locations and value encodings.
func (f *Fixture) Validate() error {
	for i, ep := range f.Endpoints {
		if _, ok := endpoint.CorrelationKey(ep.ID); !ok {
			return fmt.Errorf("endpoints[%d]: malformed device id %q", i, ep.ID)
		}
	}
	for i, k := range f.Keys {
		if k.Path == "" && k.Device == "" {
			return fmt.Errorf("keys[%d]: path or device is required", i)
		}
		if k.Device != "" {
			if _, ok := endpoint.CorrelationKey(k.Device); !ok {
				return fmt.Errorf("keys[%d]: malformed device id %q", i, k.Device)
			}
		}
		for j, v := range k.Values {
			if v.Name == "" {
				return fmt.Errorf("keys[%d].values[%d]: name is required", i, j)
			}
			t, err := ir.ParseValueType(v.Type)
			if err != nil {
				return fmt.Errorf("keys[%d].values[%d]: %w", i, j, err)
			}
			if _, err := ir.ParseValue(t, v.Data); err != nil {
				return fmt.Errorf("keys[%d].values[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func (k FixtureKey) fullPath() string {
	if k.Path != "" {
		return k.Path
	}
	key, _ := endpoint.CorrelationKey(k.Device)
	return endpoint.KeyPath(key, k.Flow, k.Subkey)
}

// Apply loads the fixture's keys into m.
func (f *Fixture) Apply(m *Memory) {
	for _, k := range f.Keys {
		path := k.fullPath()
		m.CreateKey(k.Hive, path)
		for _, v := range k.Values {
			t, _ := ir.ParseValueType(v.Type)
			val, _ := ir.ParseValue(t, v.Data)
			m.Set(k.Hive, path, v.Name, val)
		}
	}
	for _, s := range f.DenyWrites {
		m.DenyWrites(s, true)
	}
}

// Probes builds the static probes answering the fixture's live states.
func (f *Fixture) Probes() []Probe {
	ps := NewStaticProbe(LabelPropertyStore)
	pc := NewStaticProbe(LabelPolicyConfig)
	for _, ep := range f.Endpoints {
		if s, ok := ep.Live[LabelPropertyStore]; ok {
			ps.Set(ep.ID, s)
		}
		if s, ok := ep.Live[LabelPolicyConfig]; ok {
			pc.Set(ep.ID, s)
		}
	}
	return []Probe{ps, pc}
}

// Endpoint looks up a declared endpoint by device ID.
func (f *Fixture) Endpoint(id string) (endpoint.Endpoint, bool) {
	for _, ep := range f.Endpoints {
		if ep.ID == id {
			return endpoint.Endpoint{ID: ep.ID, Flow: ep.Flow, Name: ep.Name}, true
		}
	}
	return endpoint.Endpoint{}, false
}

// Simulated returns a System backed by the fixture.
func (f *Fixture) Simulated() (*System, *Memory) {
	m := NewMemory()
	f.Apply(m)
	return &System{Registry: m, Probes: f.Probes(), Apartment: NewApartment(nil)}, m
}
