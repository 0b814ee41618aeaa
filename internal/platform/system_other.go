//go:build !windows

package platform

// NewSystem reports ErrUnsupported; use a fixture-backed Memory instead.
func NewSystem() (*System, error) {
	return nil, ErrUnsupported
}
