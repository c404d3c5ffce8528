package retry

import (
	"errors"
	"time"

	"github.com/ddc-protocol/ddc-go/pkg/mccs"
	"github.com/ddc-protocol/ddc-go/pkg/transport"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// DefaultMaxAttempts bounds how often a single exchange is tried. The
// standard's guidance is low single digits; past three tries a monitor
// that has not answered will not.
const DefaultMaxAttempts = 3

// ErrNotReady marks a null-frame reply: the monitor acknowledged the read
// but had no answer prepared yet. Transient.
var ErrNotReady = errors.New("monitor not ready")

// CommandKind selects the minimum inter-command delay for an exchange.
type CommandKind uint8

const (
	// KindGet is a Get-VCP exchange.
	KindGet CommandKind = 0

	// KindSet is a Set-VCP (or save/reset) write.
	KindSet CommandKind = 1

	// KindCapabilities is a capability string fragment exchange.
	KindCapabilities CommandKind = 2
)

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case KindGet:
		return "GET"
	case KindSet:
		return "SET"
	case KindCapabilities:
		return "CAPABILITIES"
	default:
		return "UNKNOWN"
	}
}

// Timing holds the protocol-mandated minimum delays between sending a
// command and reading its reply (or issuing the next command).
type Timing struct {
	Get          time.Duration
	Set          time.Duration
	Capabilities time.Duration
}

// DefaultTiming returns delays that clear the standard's minimums with
// headroom for slow monitors.
func DefaultTiming() Timing {
	return Timing{
		Get:          40 * time.Millisecond,
		Set:          50 * time.Millisecond,
		Capabilities: 50 * time.Millisecond,
	}
}

// Delay returns the minimum delay for a command kind.
func (t Timing) Delay(kind CommandKind) time.Duration {
	switch kind {
	case KindSet:
		return t.Set
	case KindCapabilities:
		return t.Capabilities
	default:
		return t.Get
	}
}

// Outcome classifies one attempt's result.
type Outcome uint8

const (
	// OutcomeSuccess means the exchange decoded cleanly.
	OutcomeSuccess Outcome = 0

	// OutcomeTransient means the attempt failed in a way a retry can fix.
	OutcomeTransient Outcome = 1

	// OutcomeFatal means retrying cannot change the result.
	OutcomeFatal Outcome = 2
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeTransient:
		return "TRANSIENT"
	case OutcomeFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Attempt records a single try of a frame exchange. Attempts exist only
// while the policy resolves an exchange and are discarded afterwards.
type Attempt struct {
	// Number is the 1-based attempt counter.
	Number int

	// Start is when the frame was written.
	Start time.Time

	// Err is the attempt's failure, nil on success.
	Err error
}

// Outcome classifies the attempt's error.
func (a Attempt) Outcome() Outcome {
	return Classify(a.Err)
}

// Classify maps an error to its outcome class.
//
// Transient: checksum mismatches, truncated/short reads, bus NAKs, bus
// timeouts, null frames and any other transport I/O failure, since all of
// them are noise a repeat can clear. Fatal: malformed or
// unsupported-feature replies, malformed capability strings, out-of-range
// values and unexpected opcodes, since they are facts about the monitor or
// the caller that a retry cannot change.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, vcp.ErrFeatureUnsupported),
		errors.Is(err, vcp.ErrMalformedReply),
		errors.Is(err, vcp.ErrValueOutOfRange),
		errors.Is(err, mccs.ErrMalformedCapabilities),
		errors.Is(err, wire.ErrUnexpectedCommand):
		return OutcomeFatal
	case errors.Is(err, wire.ErrChecksumMismatch),
		errors.Is(err, wire.ErrTruncated),
		errors.Is(err, wire.ErrInvalidLength),
		errors.Is(err, transport.ErrNAK),
		errors.Is(err, transport.ErrTimeout),
		errors.Is(err, ErrNotReady):
		return OutcomeTransient
	default:
		// Anything else came out of the transport; bus I/O is transient by
		// definition and surfaces to the caller only after the ceiling.
		return OutcomeTransient
	}
}

// Action is the policy's verdict for a failed attempt.
type Action struct {
	// Retry is true when the exchange should be tried again.
	Retry bool

	// After is how long to wait before the next attempt. Zero when Retry
	// is false.
	After time.Duration
}

// GiveUp is the terminal action.
var GiveUp = Action{}

// Policy decides whether a failed exchange attempt is retried. Next is a
// pure function of the attempt history and the error; the policy carries no
// state of its own besides its configuration.
type Policy struct {
	// MaxAttempts is the attempt ceiling per exchange.
	MaxAttempts int

	// Backoff produces the inter-attempt delays. Shared across exchanges
	// of one session; reset by the command layer on success.
	Backoff *Backoff
}

// NewPolicy creates a policy with the default ceiling and backoff.
func NewPolicy() *Policy {
	return &Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     NewBackoff(),
	}
}

// Next returns the action for the given attempt history, where err is the
// failure of the most recent attempt.
func (p *Policy) Next(attempts []Attempt, err error) Action {
	switch Classify(err) {
	case OutcomeSuccess, OutcomeFatal:
		return GiveUp
	}
	max := p.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	if len(attempts) >= max {
		return GiveUp
	}
	return Action{Retry: true, After: p.Backoff.Next()}
}
