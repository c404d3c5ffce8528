package protocol

// State is the per-exchange state machine position.
type State uint8

const (
	// StateIdle means no frame has been written yet.
	StateIdle State = 0

	// StateSent means the request frame is on the bus.
	StateSent State = 1

	// StateAwaitingReply means the mandated delay passed and the reply
	// read has been issued.
	StateAwaitingReply State = 2

	// StateDecoded is the terminal success state.
	StateDecoded State = 3

	// StateFailed is the terminal error state.
	StateFailed State = 4
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSent:
		return "SENT"
	case StateAwaitingReply:
		return "AWAITING_REPLY"
	case StateDecoded:
		return "DECODED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
