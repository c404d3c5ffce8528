package vcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capsStub is a minimal CapabilitySource for tests.
type capsStub struct {
	values   map[uint8][]uint16
	declared map[uint8]bool
}

func (c *capsStub) VCPValues(code uint8) ([]uint16, bool) {
	return c.values[code], c.declared[code]
}

func TestDecodeReplyContinuous(t *testing.T) {
	// result=supported, code=0x10, type=continuous, max=100, current=50
	body := []byte{0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32}

	v, err := DecodeReply(CodeLuminance, body, nil)
	require.NoError(t, err)

	assert.Equal(t, KindContinuous, v.Kind())
	assert.Equal(t, uint16(50), v.Current())
	assert.Equal(t, uint16(100), v.Maximum())
	assert.InDelta(t, 0.5, v.Fraction(), 1e-9)
}

func TestDecodeReplyDiscrete(t *testing.T) {
	// Input select reporting HDMI-1 (0x11).
	body := []byte{0x00, 0x60, 0x01, 0x00, 0x00, 0x00, 0x11}

	v, err := DecodeReply(CodeInputSelect, body, nil)
	require.NoError(t, err)

	assert.Equal(t, KindDiscrete, v.Kind())
	assert.Equal(t, uint16(0x11), v.Code())
}

func TestDecodeReplyTypeByteAuthoritative(t *testing.T) {
	// Capabilities declare discrete values for 0x60, but the reply says
	// continuous. The reply's type byte wins.
	caps := &capsStub{
		values:   map[uint8][]uint16{0x60: {0x01, 0x03, 0x11}},
		declared: map[uint8]bool{0x60: true},
	}
	body := []byte{0x00, 0x60, 0x00, 0x00, 0x12, 0x00, 0x03}

	v, err := DecodeReply(CodeInputSelect, body, caps)
	require.NoError(t, err)
	assert.Equal(t, KindContinuous, v.Kind())
}

func TestDecodeReplyDiscreteMembership(t *testing.T) {
	caps := &capsStub{
		values:   map[uint8][]uint16{0x60: {0x01, 0x03, 0x11}},
		declared: map[uint8]bool{0x60: true},
	}

	// A declared code passes.
	body := []byte{0x00, 0x60, 0x01, 0x00, 0x00, 0x00, 0x03}
	_, err := DecodeReply(CodeInputSelect, body, caps)
	require.NoError(t, err)

	// A code outside the declared set is rejected.
	body = []byte{0x00, 0x60, 0x01, 0x00, 0x00, 0x00, 0x7f}
	_, err = DecodeReply(CodeInputSelect, body, caps)
	assert.ErrorIs(t, err, ErrMalformedReply)
}

func TestDecodeReplyErrors(t *testing.T) {
	tests := []struct {
		name string
		code Code
		body []byte
		want error
	}{
		{
			name: "unsupported feature",
			code: CodeLuminance,
			body: []byte{0x01, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: ErrFeatureUnsupported,
		},
		{
			name: "short body",
			code: CodeLuminance,
			body: []byte{0x00, 0x10, 0x00},
			want: ErrMalformedReply,
		},
		{
			name: "long body",
			code: CodeLuminance,
			body: []byte{0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32, 0xff},
			want: ErrMalformedReply,
		},
		{
			name: "unknown result code",
			code: CodeLuminance,
			body: []byte{0x7f, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32},
			want: ErrMalformedReply,
		},
		{
			name: "unknown type byte",
			code: CodeLuminance,
			body: []byte{0x00, 0x10, 0x05, 0x00, 0x64, 0x00, 0x32},
			want: ErrMalformedReply,
		},
		{
			name: "feature code mismatch",
			code: CodeLuminance,
			body: []byte{0x00, 0x12, 0x00, 0x00, 0x64, 0x00, 0x32},
			want: ErrMalformedReply,
		},
		{
			name: "current above maximum",
			code: CodeLuminance,
			body: []byte{0x00, 0x10, 0x00, 0x00, 0x32, 0x00, 0x64},
			want: ErrMalformedReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReply(tt.code, tt.body, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeSet(t *testing.T) {
	cont, err := Continuous(50, 100)
	require.NoError(t, err)

	body, err := EncodeSet(CodeLuminance, cont)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x00, 0x32}, body)

	body, err = EncodeSet(CodeInputSelect, Discrete(0x0111))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01, 0x11}, body)
}

func TestEncodeSetOutOfRange(t *testing.T) {
	// A value constructed from a prior read carries the known maximum;
	// pushing current past it must fail, not clamp.
	v := Value{kind: KindContinuous, current: 150, maximum: 100}
	_, err := EncodeSet(CodeLuminance, v)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestContinuousInvariant(t *testing.T) {
	_, err := Continuous(101, 100)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestValidateAgainst(t *testing.T) {
	caps := &capsStub{
		values:   map[uint8][]uint16{0x60: {0x01, 0x03}},
		declared: map[uint8]bool{0x60: true, 0x10: true},
	}

	assert.NoError(t, Discrete(0x03).ValidateAgainst(CodeInputSelect, caps))
	assert.ErrorIs(t, Discrete(0x11).ValidateAgainst(CodeInputSelect, caps), ErrValueOutOfRange)

	// Continuous values are bounded by the monitor, not the capability set.
	cont, err := Continuous(10, 100)
	require.NoError(t, err)
	assert.NoError(t, cont.ValidateAgainst(CodeLuminance, caps))

	// No capabilities known: nothing to validate against.
	assert.NoError(t, Discrete(0x11).ValidateAgainst(CodeInputSelect, nil))
}

func TestRegistry(t *testing.T) {
	def, ok := Lookup(CodeLuminance)
	require.True(t, ok)
	assert.Equal(t, "Luminance", def.Name)
	assert.Equal(t, "continuous", def.Kind)
	assert.Equal(t, AccessReadWrite, def.Access)

	byName, ok := LookupName("InputSelect")
	require.True(t, ok)
	assert.Equal(t, CodeInputSelect, byName.Code)

	assert.Equal(t, "Luminance", CodeLuminance.String())
	assert.Equal(t, "0x13", Code(0x13).String())
	assert.NotEmpty(t, RegistryVersion())
}
