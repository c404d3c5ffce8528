package log

import "time"

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the monitor session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// BusAddr is the monitor's 7-bit bus address.
	BusAddr uint8 `cbor:"3,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"4,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// Type-specific payload (one of these will be set).
	Frame    *FrameEvent    `cbor:"7,keyasint,omitempty"`
	Exchange *ExchangeEvent `cbor:"8,keyasint,omitempty"`
	Error    *ErrorEvent    `cbor:"9,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates bytes read from the monitor.
	DirectionIn Direction = 0
	// DirectionOut indicates bytes written to the monitor.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the bus transfer layer (raw buffers).
	LayerTransport Layer = 0
	// LayerWire is the frame codec layer (decoded frames).
	LayerWire Layer = 1
	// LayerProtocol is the command/exchange layer.
	LayerProtocol Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerProtocol:
		return "PROTOCOL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame is a raw frame on the bus.
	CategoryFrame Category = 0
	// CategoryExchange is a command exchange attempt or completion.
	CategoryExchange Category = 1
	// CategoryError is a failure at any layer.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryExchange:
		return "EXCHANGE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a raw buffer written to or read from the bus.
type FrameEvent struct {
	// Size is the buffer length in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the buffer contents. DDC/CI frames are tiny, so frames are
	// never truncated in the log.
	Data []byte `cbor:"2,keyasint"`
}

// ExchangeEvent captures one command exchange attempt or its resolution.
type ExchangeEvent struct {
	// Opcode is the request command byte.
	Opcode uint8 `cbor:"1,keyasint"`

	// Kind is the command kind name (GET, SET, CAPABILITIES).
	Kind string `cbor:"2,keyasint"`

	// Feature is the VCP feature code, when the exchange has one.
	Feature uint8 `cbor:"3,keyasint,omitempty"`

	// Attempt is the 1-based attempt number.
	Attempt int `cbor:"4,keyasint"`

	// State is the exchange state reached (SENT, DECODED, FAILED...).
	State string `cbor:"5,keyasint"`

	// Outcome is the attempt classification, empty while in flight.
	Outcome string `cbor:"6,keyasint,omitempty"`

	// Elapsed is the time since the exchange started.
	Elapsed time.Duration `cbor:"7,keyasint,omitempty"`
}

// ErrorEvent captures a failure.
type ErrorEvent struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Transient indicates whether the retry policy classified the failure
	// as retryable.
	Transient bool `cbor:"2,keyasint"`
}
