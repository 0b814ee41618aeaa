package ir

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValueType is a registry value type. The numeric values match the
// platform's REG_* constants so backends can convert without tables.
type ValueType uint32

const (
	TypeNone   ValueType = 0
	TypeString ValueType = 1
	TypeBinary ValueType = 3
	TypeDWord  ValueType = 4
)

// ErrUnknownType is returned for type names outside REG_DWORD, REG_SZ and REG_BINARY.
var ErrUnknownType = errors.New("unknown value type")

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "REG_SZ"
	case TypeBinary:
		return "REG_BINARY"
	case TypeDWord:
		return "REG_DWORD"
	default:
		return fmt.Sprintf("REG_TYPE_%d", uint32(t))
	}
}

// Supported reports whether rules may read and write this type.
func (t ValueType) Supported() bool {
	return t == TypeString || t == TypeBinary || t == TypeDWord
}

// ParseValueType resolves a catalog type name. Unrecognized names are
// rejected, never coerced.
func ParseValueType(name string) (ValueType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "REG_DWORD":
		return TypeDWord, nil
	case "REG_SZ":
		return TypeString, nil
	case "REG_BINARY":
		return TypeBinary, nil
	default:
		return TypeNone, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

// Value is one typed registry payload. Only the field matching Type is
// meaningful; unsupported types keep their raw bytes in Bin.
type Value struct {
	Type  ValueType
	DWord uint32
	Str   string
	Bin   []byte
}

// DWord builds a REG_DWORD value.
func DWord(v uint32) Value { return Value{Type: TypeDWord, DWord: v} }

// String builds a REG_SZ value.
func String(s string) Value { return Value{Type: TypeString, Str: s} }

// Binary builds a REG_BINARY value.
func Binary(b []byte) Value { return Value{Type: TypeBinary, Bin: bytes.Clone(b)} }

// Raw returns the exact payload as text: decimal for DWORD, the string
// itself for REG_SZ and lowercase hex for everything else.
func (v Value) Raw() string {
	switch v.Type {
	case TypeDWord:
		return strconv.FormatUint(uint64(v.DWord), 10)
	case TypeString:
		return v.Str
	default:
		return hex.EncodeToString(v.Bin)
	}
}

const (
	previewStringMax = 80
	previewBinaryMax = 32
)

// Preview returns a short human-readable rendering.
func (v Value) Preview() string {
	switch v.Type {
	case TypeDWord:
		return strconv.FormatUint(uint64(v.DWord), 10)
	case TypeString:
		if len(v.Str) > previewStringMax {
			cut := previewStringMax
			for cut > 0 && !utf8.RuneStart(v.Str[cut]) {
				cut--
			}
			return v.Str[:cut] + "..."
		}
		return v.Str
	case TypeBinary:
		if len(v.Bin) > previewBinaryMax {
			return fmt.Sprintf("%s...(%d bytes)", FormatHex(v.Bin[:previewBinaryMax]), len(v.Bin))
		}
		return FormatHex(v.Bin)
	default:
		return fmt.Sprintf("<%s: %d bytes>", v.Type, len(v.Bin))
	}
}

// Text returns the catalog representation of the value. Strings that
// would not survive a trimmed, single-line field are written Go-quoted.
func (v Value) Text() string {
	switch v.Type {
	case TypeBinary:
		return FormatHex(v.Bin)
	case TypeString:
		if needsQuote(v.Str) {
			return strconv.Quote(v.Str)
		}
		return v.Str
	default:
		return v.Raw()
	}
}

func needsQuote(s string) bool {
	if s != strings.TrimSpace(s) || strings.HasPrefix(s, `"`) || !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if !strconv.IsPrint(r) {
			return true
		}
	}
	return false
}

// Equal reports whether two values have the same type and raw payload.
func (v Value) Equal(o Value) bool {
	return v.Type == o.Type && v.Raw() == o.Raw()
}

// Flag returns the DWORD payload when the value is a 0/1 DWORD.
func (v Value) Flag() (uint32, bool) {
	if v.Type != TypeDWord || v.DWord > 1 {
		return 0, false
	}
	return v.DWord, true
}

// ParseValue decodes catalog text for the given type. REG_SZ text that
// starts with a double quote is unquoted as a Go string literal.
func ParseValue(t ValueType, text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch t {
	case TypeDWord:
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("parse dword %q: %w", text, err)
		}
		return DWord(uint32(n)), nil
	case TypeString:
		if !strings.HasPrefix(text, `"`) {
			return String(text), nil
		}
		str, err := strconv.Unquote(text)
		if err != nil {
			return Value{}, fmt.Errorf("parse string %s: %w", text, err)
		}
		return String(str), nil
	case TypeBinary:
		b, err := ParseHex(text)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeBinary, Bin: b}, nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
}

// FormatHex renders bytes as "hex:aa,bb,cc".
func FormatHex(b []byte) string {
	var sb strings.Builder
	sb.WriteString("hex:")
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

// ParseHex accepts "hex:aa,bb", "aa bb" and "aabb".
func ParseHex(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if len(s) >= 4 && strings.EqualFold(s[:4], "hex:") {
		s = s[4:]
	}
	s = strings.NewReplacer(",", "", " ", "", "\t", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex %q: %w", text, err)
	}
	return b, nil
}

// MarshalText encodes the type by its REG_* name.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the three supported names and REG_TYPE_<n>.
func (t *ValueType) UnmarshalText(b []byte) error {
	s := string(b)
	if rest, ok := strings.CutPrefix(s, "REG_TYPE_"); ok {
		n, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownType, s)
		}
		*t = ValueType(n)
		return nil
	}
	vt, err := ParseValueType(s)
	if err != nil {
		return err
	}
	*t = vt
	return nil
}

// FromRaw rebuilds a value from its Raw form.
func FromRaw(t ValueType, raw string) (Value, error) {
	switch t {
	case TypeDWord:
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("parse dword %q: %w", raw, err)
		}
		return DWord(uint32(n)), nil
	case TypeString:
		return String(raw), nil
	default:
		b, err := hex.DecodeString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("parse raw %q: %w", raw, err)
		}
		return Value{Type: t, Bin: b}, nil
	}
}
