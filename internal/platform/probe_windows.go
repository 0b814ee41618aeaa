//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// propertyStoreProbe reads Disable_SysFx through
// IMMDeviceEnumerator -> IMMDevice -> IPropertyStore.
type propertyStoreProbe struct {
	apartment *Apartment
}

func (propertyStoreProbe) Label() string { return LabelPropertyStore }

func (p propertyStoreProbe) Read(deviceID string) LiveRead {
	r := LiveRead{Label: LabelPropertyStore}
	err := p.apartment.Do(func() error {
		raw, err := readPropertyStore(deviceID)
		if err != nil {
			return err
		}
		r.Raw = &raw
		r.Enhancements = StateFromDisableFlag(raw)
		return nil
	})
	if err != nil {
		r.Detail = err.Error()
	}
	return r
}

func readPropertyStore(deviceID string) (uint32, error) {
	id, err := windows.UTF16PtrFromString(deviceID)
	if err != nil {
		return 0, err
	}
	enum, err := coCreate(&clsidMMDeviceEnumerator, &iidIMMDeviceEnumerator)
	if err != nil {
		return 0, err
	}
	defer enum.release()

	var dev *comObject
	if err := hresultErr("GetDevice", enum.call(vtblGetDevice, uintptr(unsafe.Pointer(id)), uintptr(unsafe.Pointer(&dev)))); err != nil {
		return 0, err
	}
	defer dev.release()

	var store *comObject
	if err := hresultErr("OpenPropertyStore", dev.call(vtblOpenProps, stgmRead, uintptr(unsafe.Pointer(&store)))); err != nil {
		return 0, err
	}
	defer store.release()

	var pv propVariant
	key := pkeyDisableSysFx
	if err := hresultErr("GetValue", store.call(vtblGetValue, uintptr(unsafe.Pointer(&key)), uintptr(unsafe.Pointer(&pv)))); err != nil {
		return 0, err
	}
	defer pv.clear()

	raw, ok := pv.disableFlag()
	if !ok {
		return 0, fmt.Errorf("property-store: unexpected variant type %d", pv.VT)
	}
	return raw, nil
}

// policyConfigProbe reads Disable_SysFx through IPolicyConfig, trying the
// FX store before the normal store.
type policyConfigProbe struct {
	apartment *Apartment
}

func (policyConfigProbe) Label() string { return LabelPolicyConfig }

func (p policyConfigProbe) Read(deviceID string) LiveRead {
	r := LiveRead{Label: LabelPolicyConfig}
	err := p.apartment.Do(func() error {
		raw, store, err := readPolicyConfig(deviceID)
		if err != nil {
			return err
		}
		r.Raw = &raw
		r.Enhancements = StateFromDisableFlag(raw)
		r.Detail = store
		return nil
	})
	if err != nil {
		r.Detail = err.Error()
	}
	return r
}

func readPolicyConfig(deviceID string) (uint32, string, error) {
	id, err := windows.UTF16PtrFromString(deviceID)
	if err != nil {
		return 0, "", err
	}
	pc, err := coCreate(&clsidPolicyConfigClient, &iidIPolicyConfigFx)
	if err != nil {
		return 0, "", err
	}
	defer pc.release()

	var lastErr error
	for _, store := range []struct {
		label string
		fx    uintptr
	}{{"fxStore", 1}, {"normalStore", 0}} {
		var pv propVariant
		key := pkeyDisableSysFx
		hr := pc.call(vtblPolicyGetVal, uintptr(unsafe.Pointer(id)), store.fx, uintptr(unsafe.Pointer(&key)), uintptr(unsafe.Pointer(&pv)))
		if err := hresultErr("GetPropertyValue("+store.label+")", hr); err != nil {
			lastErr = err
			continue
		}
		raw, ok := pv.disableFlag()
		pv.clear()
		if ok {
			return raw, store.label, nil
		}
		lastErr = fmt.Errorf("%s: empty value", store.label)
	}
	return 0, "", lastErr
}
