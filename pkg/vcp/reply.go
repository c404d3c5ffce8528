package vcp

import (
	"errors"
	"fmt"
)

// Reply decoding errors.
var (
	// ErrFeatureUnsupported indicates the monitor declared it does not
	// implement the requested feature. Retrying cannot change that.
	ErrFeatureUnsupported = errors.New("vcp feature unsupported by monitor")

	// ErrMalformedReply indicates a reply body of the wrong length or with
	// values that do not fit the declared layout.
	ErrMalformedReply = errors.New("malformed vcp reply")
)

// Get-VCP reply result codes.
const (
	resultNoError     = 0x00
	resultUnsupported = 0x01
)

// Get-VCP reply type bytes.
const (
	typeSetParameter = 0x00 // continuous
	typeMomentary    = 0x01 // discrete-like
)

// replyBodyLen is the fixed size of a Get-VCP reply body:
// result, feature code, type, maximum (2 bytes BE), current (2 bytes BE).
const replyBodyLen = 7

// CapabilitySource exposes the capability tree's knowledge about a feature
// without binding this package to the capability parser. Implemented by
// mccs.Capabilities. A nil source means no capabilities are known.
type CapabilitySource interface {
	// VCPValues returns the permitted discrete value codes for the feature
	// and whether the capability string declares the feature at all. An
	// empty set with declared=true means continuous or unrestricted.
	VCPValues(code uint8) (values []uint16, declared bool)
}

// DecodeReply decodes a Get-VCP reply body into a typed Value.
//
// The reply's own type byte is authoritative for the value's shape, even
// when it disagrees with the capability tree. When a capability source is
// supplied and lists discrete values for the feature, a discrete reply
// outside that set is rejected rather than passed through.
func DecodeReply(feature Code, body []byte, caps CapabilitySource) (Value, error) {
	if len(body) != replyBodyLen {
		return Value{}, fmt.Errorf("%w: body is %d bytes, want %d", ErrMalformedReply, len(body), replyBodyLen)
	}

	switch body[0] {
	case resultNoError:
	case resultUnsupported:
		return Value{}, fmt.Errorf("%w: feature %s", ErrFeatureUnsupported, feature)
	default:
		return Value{}, fmt.Errorf("%w: unknown result code 0x%02x", ErrMalformedReply, body[0])
	}

	if got := Code(body[1]); got != feature {
		return Value{}, fmt.Errorf("%w: reply is for feature %s, requested %s", ErrMalformedReply, got, feature)
	}

	maximum := uint16(body[3])<<8 | uint16(body[4])
	current := uint16(body[5])<<8 | uint16(body[6])

	switch body[2] {
	case typeSetParameter:
		v, err := Continuous(current, maximum)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		return v, nil
	case typeMomentary:
		v := Discrete(current)
		if caps != nil {
			if values, declared := caps.VCPValues(uint8(feature)); declared && len(values) > 0 && !contains(values, current) {
				return Value{}, fmt.Errorf("%w: discrete code 0x%04x not among the %d values the monitor declared for %s",
					ErrMalformedReply, current, len(values), feature)
			}
		}
		return v, nil
	default:
		return Value{}, fmt.Errorf("%w: unknown type byte 0x%02x", ErrMalformedReply, body[2])
	}
}

// EncodeSet builds a Set-VCP request body: feature code followed by the
// big-endian value word. Discrete values carry their selector code; a
// continuous value sends only its current (the monitor owns the maximum).
//
// A continuous value whose current exceeds a known maximum is a caller
// contract violation and fails with ErrValueOutOfRange.
func EncodeSet(feature Code, value Value) ([]byte, error) {
	if value.Kind() == KindContinuous && value.Maximum() != 0 && value.Current() > value.Maximum() {
		return nil, fmt.Errorf("%w: current %d exceeds maximum %d for %s",
			ErrValueOutOfRange, value.Current(), value.Maximum(), feature)
	}
	word := value.Current()
	return []byte{uint8(feature), uint8(word >> 8), uint8(word)}, nil
}

// ValidateAgainst checks a caller-supplied value against the capability
// tree before a Set: a discrete code must be in the declared set when one
// exists. Continuous values are bounded by the monitor's reply maximum, not
// by capabilities, so they pass.
func (v Value) ValidateAgainst(feature Code, caps CapabilitySource) error {
	if caps == nil || v.Kind() != KindDiscrete {
		return nil
	}
	values, declared := caps.VCPValues(uint8(feature))
	if declared && len(values) > 0 && !contains(values, v.Code()) {
		return fmt.Errorf("%w: discrete code 0x%04x not permitted for %s", ErrValueOutOfRange, v.Code(), feature)
	}
	return nil
}

func contains(values []uint16, v uint16) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
