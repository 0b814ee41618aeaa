//go:build windows

package platform

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modole32             = windows.NewLazySystemDLL("ole32.dll")
	procCoCreateInstance = modole32.NewProc("CoCreateInstance")
	procPropVariantClear = modole32.NewProc("PropVariantClear")
)

const (
	clsctxAll        = 0x17
	stgmRead         = 0x0
	sFalse           = windows.Errno(1)
	rpcEChangedMode  = windows.Errno(0x80010106)
	vtEmpty          = 0
	vtI4             = 3
	vtBool           = 11
	vtUI4            = 19
	vtblRelease      = 2
	vtblGetDevice    = 5
	vtblOpenProps    = 4
	vtblGetValue     = 5
)

// policyConfigLayout is the IPolicyConfig vtable for
// {f8679f50-850a-41cf-9c72-430f290290c8} as declared in PolicyConfig.h.
// That header lists ResetDeviceFormat, which the IPolicyConfigFx
// declarations in circulation leave out.
var policyConfigLayout = []string{
	"QueryInterface", "AddRef", "Release",
	"GetMixFormat", "GetDeviceFormat", "ResetDeviceFormat", "SetDeviceFormat",
	"GetProcessingPeriod", "SetProcessingPeriod",
	"GetShareMode", "SetShareMode",
	"GetPropertyValue", "SetPropertyValue",
	"SetDefaultEndpoint", "SetEndpointVisibility",
}

// GetPropertyValue(device, bFxStore, key, pv)
var vtblPolicyGetVal = slices.Index(policyConfigLayout, "GetPropertyValue")

var (
	clsidMMDeviceEnumerator = windows.GUID{Data1: 0xbcde0395, Data2: 0xe52f, Data3: 0x467c, Data4: [8]byte{0x8e, 0x3d, 0xc4, 0x57, 0x92, 0x91, 0x69, 0x2e}}
	iidIMMDeviceEnumerator  = windows.GUID{Data1: 0xa95664d2, Data2: 0x9614, Data3: 0x4f35, Data4: [8]byte{0xa7, 0x46, 0xde, 0x8d, 0xb6, 0x36, 0x17, 0xe6}}
	clsidPolicyConfigClient = windows.GUID{Data1: 0x870af99c, Data2: 0x171d, Data3: 0x4f9e, Data4: [8]byte{0xaf, 0x0d, 0xe6, 0x3d, 0xf4, 0x0c, 0x2b, 0xc9}}
	iidIPolicyConfigFx      = windows.GUID{Data1: 0xf8679f50, Data2: 0x850a, Data3: 0x41cf, Data4: [8]byte{0x9c, 0x72, 0x43, 0x0f, 0x29, 0x02, 0x90, 0xc8}}

	// PKEY_AudioEndpoint_Disable_SysFx: {e4870e26-3cc5-4cd2-ba46-ca0a9a70ed04},2
	pkeyDisableSysFx = propertyKey{
		FmtID: windows.GUID{Data1: 0xe4870e26, Data2: 0x3cc5, Data3: 0x4cd2, Data4: [8]byte{0xba, 0x46, 0xca, 0x0a, 0x9a, 0x70, 0xed, 0x04}},
		PID:   2,
	}
)

type propertyKey struct {
	FmtID windows.GUID
	PID   uint32
}

// propVariant covers the PROPVARIANT header plus the largest scalar union
// member this package reads.
type propVariant struct {
	VT       uint16
	reserved [3]uint16
	val      [16]byte
}

func (pv *propVariant) clear() {
	procPropVariantClear.Call(uintptr(unsafe.Pointer(pv)))
}

// disableFlag extracts Disable_SysFx as 0/1 from the common variant types.
func (pv *propVariant) disableFlag() (uint32, bool) {
	switch pv.VT {
	case vtUI4, vtI4:
		v := *(*uint32)(unsafe.Pointer(&pv.val[0]))
		if v != 0 {
			return 1, true
		}
		return 0, true
	case vtBool:
		if *(*int16)(unsafe.Pointer(&pv.val[0])) != 0 {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

type comObject struct {
	vtbl *[32]uintptr
}

func (o *comObject) call(method int, args ...uintptr) uintptr {
	all := append([]uintptr{uintptr(unsafe.Pointer(o))}, args...)
	r, _, _ := syscall.SyscallN(o.vtbl[method], all...)
	return r
}

func (o *comObject) release() {
	if o != nil {
		o.call(vtblRelease)
	}
}

func hresultErr(op string, hr uintptr) error {
	if hr == 0 {
		return nil
	}
	return fmt.Errorf("%s: HRESULT 0x%08x", op, uint32(hr))
}

func coCreate(clsid, iid *windows.GUID) (*comObject, error) {
	var obj *comObject
	hr, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(clsid)),
		0,
		clsctxAll,
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&obj)),
	)
	if err := hresultErr("CoCreateInstance", hr); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("CoCreateInstance: nil interface")
	}
	return obj, nil
}

// comInitializer locks the goroutine to its OS thread and enters a
// single-threaded apartment. A thread already in an apartment is accepted.
func comInitializer() (func(), error) {
	runtime.LockOSThread()
	err := windows.CoInitializeEx(0, windows.COINIT_APARTMENTTHREADED)
	switch {
	case err == nil, errors.Is(err, sFalse):
		return func() {
			windows.CoUninitialize()
			runtime.UnlockOSThread()
		}, nil
	case errors.Is(err, rpcEChangedMode):
		return runtime.UnlockOSThread, nil
	default:
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("CoInitializeEx: %w", err)
	}
}
