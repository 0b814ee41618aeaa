package store

import (
	"time"

	"github.com/roach88/audioctl/internal/ir"
)

// Kind is what a session was learning.
type Kind string

const (
	KindMain     Kind = "main"
	KindEffect   Kind = "effect"
	KindDiscover Kind = "discover"
)

// Outcome is how a session ended. An unfinished session has no outcome.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeNoCandidate  Outcome = "no_candidate"
	OutcomeDeduplicated Outcome = "deduplicated"
	OutcomeError        Outcome = "error"
)

// Snapshot labels used by learning runs.
const (
	LabelA  = "A"
	LabelB  = "B"
	LabelA2 = "A2"
	LabelB2 = "B2"
)

// Session is one learning run against one endpoint.
type Session struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	DeviceID       string    `json:"device_id"`
	CorrelationKey string    `json:"correlation_key,omitempty"`
	Flow           ir.Flow   `json:"flow"`
	EffectName     string    `json:"effect_name,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitzero"`
	Outcome        Outcome   `json:"outcome,omitempty"`
	Section        string    `json:"section,omitempty"`
	Message        string    `json:"message,omitempty"`

	// Labels lists the stored snapshots in capture order. Populated by
	// ReadSession only.
	Labels []string `json:"snapshots,omitempty"`
}

// Finished reports whether the session has an outcome.
func (s Session) Finished() bool {
	return !s.FinishedAt.IsZero()
}

// Result is the final state recorded by FinishSession.
type Result struct {
	Outcome    Outcome
	Section    string
	Message    string
	FinishedAt time.Time
}
