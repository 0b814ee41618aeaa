package platform

import (
	"errors"
	"time"

	"github.com/roach88/audioctl/internal/ir"
)

var (
	// ErrNotExist is returned when a key or value is absent. Writes never
	// create keys, so writing under a missing key also yields ErrNotExist.
	ErrNotExist = errors.New("registry key or value does not exist")

	// ErrAccessDenied is returned when the caller lacks rights for a write.
	ErrAccessDenied = errors.New("registry access denied")

	// ErrUnsupported is returned by NewSystem on platforms without a backend.
	ErrUnsupported = errors.New("platform backend not available on this OS")
)

// NamedValue is one value under a registry key.
type NamedValue struct {
	Name  string
	Value ir.Value
}

// Registry is the persisted property store addressed by (scope, path).
// Paths are backslash-separated and compare case-insensitively, as do
// value names.
type Registry interface {
	ReadValue(scope ir.Scope, path, name string) (ir.Value, error)
	WriteValue(scope ir.Scope, path, name string, v ir.Value) error
	Values(scope ir.Scope, path string) ([]NamedValue, error)
	Subkeys(scope ir.Scope, path string) ([]string, error)
	LastWrite(scope ir.Scope, path string) (time.Time, error)
}

// System bundles the backends used against a real machine.
type System struct {
	Registry  Registry
	Probes    []Probe
	Apartment *Apartment
}
