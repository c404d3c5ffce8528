package vcp

import (
	"errors"
	"fmt"
)

// Value errors.
var (
	// ErrValueOutOfRange indicates a caller-supplied value violates a known
	// bound (continuous current above maximum, or a discrete code outside
	// the capability set). Values are never clamped: clamping would hide a
	// programming error by changing a physical setting to something the
	// caller did not ask for.
	ErrValueOutOfRange = errors.New("vcp value out of range")
)

// Kind distinguishes the two shapes a VCP value can take.
type Kind uint8

const (
	// KindContinuous is a numeric range with a current and maximum value.
	KindContinuous Kind = 0

	// KindDiscrete is one code from an enumerated set.
	KindDiscrete Kind = 1
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindContinuous:
		return "CONTINUOUS"
	case KindDiscrete:
		return "DISCRETE"
	default:
		return "UNKNOWN"
	}
}

// Value is the typed value of a VCP feature: either continuous
// (current/maximum) or discrete (a single selector code).
type Value struct {
	kind    Kind
	current uint16
	maximum uint16
}

// Continuous builds a continuous value. Current must not exceed maximum.
func Continuous(current, maximum uint16) (Value, error) {
	if current > maximum {
		return Value{}, fmt.Errorf("%w: current %d exceeds maximum %d", ErrValueOutOfRange, current, maximum)
	}
	return Value{kind: KindContinuous, current: current, maximum: maximum}, nil
}

// Discrete builds a discrete value carrying a selector code.
func Discrete(code uint16) Value {
	return Value{kind: KindDiscrete, current: code}
}

// Kind returns the value's shape.
func (v Value) Kind() Kind {
	return v.kind
}

// Current returns the current value. For discrete values this is the
// selector code.
func (v Value) Current() uint16 {
	return v.current
}

// Maximum returns the maximum value. Meaningful only for continuous values;
// the monitor owns it and it is never sent back on a Set.
func (v Value) Maximum() uint16 {
	return v.maximum
}

// Code returns the selector code of a discrete value.
func (v Value) Code() uint16 {
	return v.current
}

// Fraction maps a continuous value onto 0..1. Returns 0 when the maximum is
// unknown.
func (v Value) Fraction() float64 {
	if v.kind != KindContinuous || v.maximum == 0 {
		return 0
	}
	return float64(v.current) / float64(v.maximum)
}

// String renders the value for logs and the shell.
func (v Value) String() string {
	switch v.kind {
	case KindContinuous:
		return fmt.Sprintf("%d/%d", v.current, v.maximum)
	default:
		return fmt.Sprintf("0x%04X", v.current)
	}
}
