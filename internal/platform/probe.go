package platform

import (
	"sync"

	"github.com/roach88/audioctl/internal/ir"
)

// Live read labels.
const (
	LabelPropertyStore = "propertyStore"
	LabelPolicyConfig  = "policyConfig"
)

// LiveRead is the outcome of one live query of the enhancements flag.
// Failures never surface as errors; they produce Unknown with Detail set.
type LiveRead struct {
	Label        string   `json:"label"`
	Enhancements ir.State `json:"enhancements"`
	Raw          *uint32  `json:"raw_disable,omitempty"`
	Detail       string   `json:"detail,omitempty"`
}

// Probe queries the live "disable enhancements" property for a device.
type Probe interface {
	Label() string
	Read(deviceID string) LiveRead
}

// ReadAll runs every probe in order.
func ReadAll(probes []Probe, deviceID string) []LiveRead {
	out := make([]LiveRead, 0, len(probes))
	for _, p := range probes {
		out = append(out, p.Read(deviceID))
	}
	return out
}

// StaticProbe answers from a table. Devices not in the table read Unknown.
type StaticProbe struct {
	label string

	mu     sync.Mutex
	states map[string]ir.State
}

// NewStaticProbe returns an empty probe reporting under label.
func NewStaticProbe(label string) *StaticProbe {
	return &StaticProbe{label: label, states: make(map[string]ir.State)}
}

func (p *StaticProbe) Label() string { return p.label }

// Set records the state subsequent reads for deviceID will return.
func (p *StaticProbe) Set(deviceID string, s ir.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[deviceID] = s
}

func (p *StaticProbe) Read(deviceID string) LiveRead {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.states[deviceID]
	if !ok {
		return LiveRead{Label: p.label, Enhancements: ir.Unknown, Detail: "no live value"}
	}
	r := LiveRead{Label: p.label, Enhancements: s}
	if v, known := s.Bool(); known {
		// Disable_SysFx is inverted: 0 means enhancements are on.
		raw := uint32(1)
		if v {
			raw = 0
		}
		r.Raw = &raw
	}
	return r
}

// StateFromDisableFlag converts a raw Disable_SysFx value to an enhancements state.
func StateFromDisableFlag(raw uint32) ir.State {
	return ir.Known(raw == 0)
}
