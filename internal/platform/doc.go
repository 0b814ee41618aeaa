// Package platform abstracts the persisted and live audio endpoint state
// exposed by the operating system.
//
// Registry is the generic key/value store (the MMDevices hive subtree).
// Probe is a live query of the canonical "disable enhancements" flag.
// Apartment scopes component-layer initialization on the calling thread.
//
// Memory implements Registry for tests, scenarios and fixture-driven
// simulation. The Windows backend lives in the *_windows.go files; other
// platforms report ErrUnsupported from NewSystem.
package platform
