//go:build windows

package platform

// NewSystem returns the live Windows registry and both live probes sharing
// one COM apartment scope.
func NewSystem() (*System, error) {
	apt := NewApartment(comInitializer)
	return &System{
		Registry:  winRegistry{},
		Probes:    []Probe{propertyStoreProbe{apartment: apt}, policyConfigProbe{apartment: apt}},
		Apartment: apt,
	}, nil
}
