//go:build windows

package platform

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/roach88/audioctl/internal/ir"
)

// winRegistry is the Registry backed by the live Windows registry.
// Every key is opened with WOW64_64KEY so 32-bit builds see the same
// MMDevices tree as the audio service.
type winRegistry struct{}

func hiveOf(scope ir.Scope) registry.Key {
	if scope == ir.SystemScope {
		return registry.LOCAL_MACHINE
	}
	return registry.CURRENT_USER
}

func mapErr(scope ir.Scope, path string, err error) error {
	switch {
	case errors.Is(err, registry.ErrNotExist):
		return fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%s\\%s: %w", scope, path, ErrAccessDenied)
	default:
		return fmt.Errorf("%s\\%s: %w", scope, path, err)
	}
}

func (winRegistry) open(scope ir.Scope, path string, access uint32) (registry.Key, error) {
	k, err := registry.OpenKey(hiveOf(scope), path, access|registry.WOW64_64KEY)
	if err != nil {
		return 0, mapErr(scope, path, err)
	}
	return k, nil
}

func (r winRegistry) ReadValue(scope ir.Scope, path, name string) (ir.Value, error) {
	k, err := r.open(scope, path, registry.QUERY_VALUE)
	if err != nil {
		return ir.Value{}, err
	}
	defer k.Close()
	return readValue(k, name, scope, path)
}

func readValue(k registry.Key, name string, scope ir.Scope, path string) (ir.Value, error) {
	n, typ, err := k.GetValue(name, nil)
	if err != nil {
		return ir.Value{}, mapErr(scope, path, err)
	}
	switch typ {
	case registry.DWORD:
		v, _, err := k.GetIntegerValue(name)
		if err != nil {
			return ir.Value{}, mapErr(scope, path, err)
		}
		return ir.DWord(uint32(v)), nil
	case registry.SZ:
		s, _, err := k.GetStringValue(name)
		if err != nil {
			return ir.Value{}, mapErr(scope, path, err)
		}
		return ir.String(s), nil
	default:
		buf := make([]byte, n)
		n, _, err = k.GetValue(name, buf)
		if err != nil {
			return ir.Value{}, mapErr(scope, path, err)
		}
		return ir.Value{Type: ir.ValueType(typ), Bin: buf[:n]}, nil
	}
}

func (r winRegistry) WriteValue(scope ir.Scope, path, name string, v ir.Value) error {
	k, err := r.open(scope, path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	switch v.Type {
	case ir.TypeDWord:
		err = k.SetDWordValue(name, v.DWord)
	case ir.TypeString:
		err = k.SetStringValue(name, v.Str)
	case ir.TypeBinary:
		err = k.SetBinaryValue(name, v.Bin)
	default:
		return fmt.Errorf("%s\\%s\\%s: %w", scope, path, name, ir.ErrUnknownType)
	}
	if err != nil {
		return mapErr(scope, path, err)
	}
	return nil
}

func (r winRegistry) Values(scope ir.Scope, path string) ([]NamedValue, error) {
	k, err := r.open(scope, path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, mapErr(scope, path, err)
	}
	out := make([]NamedValue, 0, len(names))
	for _, name := range names {
		v, err := readValue(k, name, scope, path)
		if err != nil {
			// Values can vanish between enumeration and read.
			continue
		}
		out = append(out, NamedValue{Name: name, Value: v})
	}
	return out, nil
}

func (r winRegistry) Subkeys(scope ir.Scope, path string) ([]string, error) {
	k, err := r.open(scope, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(0)
	if err != nil {
		return nil, mapErr(scope, path, err)
	}
	return names, nil
}

func (r winRegistry) LastWrite(scope ir.Scope, path string) (time.Time, error) {
	k, err := r.open(scope, path, registry.QUERY_VALUE)
	if err != nil {
		return time.Time{}, err
	}
	defer k.Close()

	info, err := k.Stat()
	if err != nil {
		return time.Time{}, mapErr(scope, path, err)
	}
	return info.ModTime(), nil
}
