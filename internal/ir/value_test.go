package ir

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueType(t *testing.T) {
	tests := []struct {
		in   string
		want ValueType
	}{
		{"REG_DWORD", TypeDWord},
		{"reg_dword", TypeDWord},
		{" REG_SZ ", TypeString},
		{"REG_BINARY", TypeBinary},
	}
	for _, tt := range tests {
		got, err := ParseValueType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "REG_QWORD", "DWORD", "REG_MULTI_SZ"} {
		_, err := ParseValueType(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrUnknownType))
	}
}

func TestValueRawAndText(t *testing.T) {
	assert.Equal(t, "1", DWord(1).Raw())
	assert.Equal(t, "1", DWord(1).Text())
	assert.Equal(t, "abc", String("abc").Raw())

	bin := Binary([]byte{0xaa, 0x01, 0xff})
	assert.Equal(t, "aa01ff", bin.Raw())
	assert.Equal(t, "hex:aa,01,ff", bin.Text())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, DWord(0).Equal(DWord(0)))
	assert.False(t, DWord(0).Equal(DWord(1)))
	assert.False(t, DWord(1).Equal(String("1")), "type must match")
	assert.True(t, Binary([]byte{1, 2}).Equal(Binary([]byte{1, 2})))
}

func TestValueFlag(t *testing.T) {
	v, ok := DWord(1).Flag()
	assert.True(t, ok)
	assert.Equal(t, uint32(1), v)

	_, ok = DWord(2).Flag()
	assert.False(t, ok)

	_, ok = String("0").Flag()
	assert.False(t, ok)
}

func TestParseValueRoundTripsCatalogText(t *testing.T) {
	for _, v := range []Value{DWord(7), String("on"), Binary([]byte{0, 1, 2})} {
		got, err := ParseValue(v.Type, v.Text())
		require.NoError(t, err)
		assert.True(t, v.Equal(got), v.Text())
	}
}

func TestStringTextQuoting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"on", "on"},
		{"x y", "x y"},
		{" on ", `" on "`},
		{"y\n[evil]", `"y\n[evil]"`},
		{"tab\there", `"tab\there"`},
		{`"quoted"`, `"\"quoted\""`},
		{"", ""},
	}
	for _, tt := range tests {
		v := String(tt.in)
		assert.Equal(t, tt.want, v.Text(), tt.in)
		assert.NotContains(t, v.Text(), "\n", tt.in)

		got, err := ParseValue(TypeString, v.Text())
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.in, got.Str)
	}

	_, err := ParseValue(TypeString, `"unterminated`)
	assert.Error(t, err)
}

func TestParseValueErrors(t *testing.T) {
	_, err := ParseValue(TypeDWord, "-1")
	assert.Error(t, err)

	_, err = ParseValue(TypeDWord, "4294967296")
	assert.Error(t, err)

	_, err = ParseValue(TypeBinary, "hex:zz")
	assert.Error(t, err)

	_, err = ParseValue(ValueType(11), "1")
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestParseHexForms(t *testing.T) {
	for _, in := range []string{"hex:aa,bb", "HEX:AA,BB", "aa bb", "aabb"} {
		b, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0xaa, 0xbb}, b)
	}

	b, err := ParseHex("hex:")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestPreviewTruncates(t *testing.T) {
	long := make([]byte, 40)
	p := Binary(long).Preview()
	assert.Contains(t, p, "...(40 bytes)")

	assert.Equal(t, "<REG_TYPE_11: 8 bytes>", Value{Type: 11, Bin: make([]byte, 8)}.Preview())
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", previewStringMax-1) + "é" + "tail"
	p := String(s).Preview()
	assert.True(t, utf8.ValidString(p))
	assert.Equal(t, strings.Repeat("a", previewStringMax-1)+"...", p)

	short := "Lautstärke"
	assert.Equal(t, short, String(short).Preview())
}

func TestFromRawRoundTrip(t *testing.T) {
	for _, v := range []Value{DWord(3), String("x y"), Binary([]byte{0xde, 0xad}), {Type: 11, Bin: []byte{1}}} {
		got, err := FromRaw(v.Type, v.Raw())
		require.NoError(t, err)
		assert.True(t, v.Equal(got))
	}
}

func TestValueTypeText(t *testing.T) {
	var vt ValueType
	require.NoError(t, vt.UnmarshalText([]byte("REG_TYPE_11")))
	assert.Equal(t, ValueType(11), vt)

	b, err := TypeDWord.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "REG_DWORD", string(b))

	assert.Error(t, vt.UnmarshalText([]byte("REG_NOPE")))
}
