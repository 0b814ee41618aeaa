package ir

import (
	"fmt"
	"strings"
)

// Flow is the direction of an audio endpoint.
type Flow int

const (
	Playback Flow = iota
	Recording
)

// Flows returns every flow in enumeration order.
func Flows() []Flow {
	return []Flow{Playback, Recording}
}

// String returns the user-facing flow name.
func (f Flow) String() string {
	switch f {
	case Playback:
		return "playback"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("flow(%d)", int(f))
	}
}

// RegistryName returns the MMDevices subkey that holds endpoints of this flow.
func (f Flow) RegistryName() string {
	if f == Recording {
		return "Capture"
	}
	return "Render"
}

// ParseFlow accepts user-facing and registry flow names, case-insensitively.
func ParseFlow(s string) (Flow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playback", "render", "output":
		return Playback, nil
	case "recording", "capture", "input":
		return Recording, nil
	default:
		return Playback, fmt.Errorf("unknown flow %q", s)
	}
}

// Scope is one of the two persisted storage roots.
type Scope int

const (
	UserScope Scope = iota
	SystemScope
)

// Scopes returns both storage roots, user scope first.
func Scopes() []Scope {
	return []Scope{UserScope, SystemScope}
}

// String returns the hive abbreviation used in the catalog.
func (s Scope) String() string {
	if s == SystemScope {
		return "HKLM"
	}
	return "HKCU"
}

// Alternate returns the other storage root.
func (s Scope) Alternate() Scope {
	if s == SystemScope {
		return UserScope
	}
	return SystemScope
}

// ParseScope accepts HKCU/HKLM and their long forms.
func ParseScope(s string) (Scope, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HKCU", "HKEY_CURRENT_USER":
		return UserScope, nil
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return SystemScope, nil
	default:
		return UserScope, fmt.Errorf("unknown hive %q", s)
	}
}

// PathRoot is one of the two conventional relative paths under an endpoint key.
type PathRoot int

const (
	EffectsPath PathRoot = iota
	BasePath
)

// PathRoots returns both relative-path roots, effects path first.
func PathRoots() []PathRoot {
	return []PathRoot{EffectsPath, BasePath}
}

func (p PathRoot) String() string {
	if p == BasePath {
		return "Properties"
	}
	return "FxProperties"
}

// RootOf reports which path root a relative path lives under.
// Nested paths such as `FxProperties\{guid}\User` resolve to their first component.
func RootOf(rel string) (PathRoot, bool) {
	head, _, _ := strings.Cut(strings.Trim(rel, `\`), `\`)
	switch {
	case strings.EqualFold(head, "FxProperties"):
		return EffectsPath, true
	case strings.EqualFold(head, "Properties"):
		return BasePath, true
	default:
		return EffectsPath, false
	}
}

// NormalizeSubkey maps a free-form catalog subkey onto a path root name.
// Anything starting with "prop" is Properties; everything else is FxProperties.
func NormalizeSubkey(s string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "prop") {
		return BasePath.String()
	}
	return EffectsPath.String()
}

// State is a tri-state read result: a known boolean or Unknown.
type State int

const (
	Unknown State = iota
	Off
	On
)

// Known lifts a boolean into a determined State.
func Known(b bool) State {
	if b {
		return On
	}
	return Off
}

// Bool returns the determined value and whether the state is known.
func (s State) Bool() (value bool, known bool) {
	switch s {
	case On:
		return true, true
	case Off:
		return false, true
	default:
		return false, false
	}
}

// IsKnown reports whether the state was determined.
func (s State) IsKnown() bool {
	return s == On || s == Off
}

func (s State) String() string {
	switch s {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state as on, off or unknown.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts on/off/unknown and their boolean spellings.
func (s *State) UnmarshalText(b []byte) error {
	st, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseState accepts on/off/unknown plus true/false/enabled/disabled.
func ParseState(text string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "on", "true", "enabled", "1":
		return On, nil
	case "off", "false", "disabled", "0":
		return Off, nil
	case "unknown", "", "none":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown state %q", text)
	}
}

// MarshalText encodes the flow by its user-facing name.
func (f Flow) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts any name ParseFlow does.
func (f *Flow) UnmarshalText(b []byte) error {
	fl, err := ParseFlow(string(b))
	if err != nil {
		return err
	}
	*f = fl
	return nil
}

// MarshalText encodes the scope as its hive abbreviation.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts any name ParseScope does.
func (s *Scope) UnmarshalText(b []byte) error {
	sc, err := ParseScope(string(b))
	if err != nil {
		return err
	}
	*s = sc
	return nil
}
