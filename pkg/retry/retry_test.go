package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddc-protocol/ddc-go/pkg/mccs"
	"github.com/ddc-protocol/ddc-go/pkg/transport"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "nil", err: nil, want: OutcomeSuccess},
		{name: "checksum", err: wire.ErrChecksumMismatch, want: OutcomeTransient},
		{name: "truncated", err: wire.ErrTruncated, want: OutcomeTransient},
		{name: "nak", err: transport.ErrNAK, want: OutcomeTransient},
		{name: "timeout", err: transport.ErrTimeout, want: OutcomeTransient},
		{name: "not ready", err: ErrNotReady, want: OutcomeTransient},
		{name: "generic transport", err: errors.New("i2c transfer failed"), want: OutcomeTransient},
		{name: "wrapped checksum", err: fmt.Errorf("attempt 2: %w", wire.ErrChecksumMismatch), want: OutcomeTransient},
		{name: "unsupported feature", err: vcp.ErrFeatureUnsupported, want: OutcomeFatal},
		{name: "malformed reply", err: vcp.ErrMalformedReply, want: OutcomeFatal},
		{name: "out of range", err: vcp.ErrValueOutOfRange, want: OutcomeFatal},
		{name: "malformed capabilities", err: mccs.ErrMalformedCapabilities, want: OutcomeFatal},
		{name: "unexpected command", err: wire.ErrUnexpectedCommand, want: OutcomeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestPolicyCeiling(t *testing.T) {
	p := NewPolicy()

	var attempts []Attempt
	actions := 0
	for i := 1; ; i++ {
		attempts = append(attempts, Attempt{Number: i, Start: time.Now(), Err: transport.ErrNAK})
		action := p.Next(attempts, transport.ErrNAK)
		if !action.Retry {
			break
		}
		actions++
		assert.Positive(t, action.After)
	}

	// Exactly the configured ceiling of attempts, then GiveUp.
	assert.Len(t, attempts, DefaultMaxAttempts)
	assert.Equal(t, DefaultMaxAttempts-1, actions)
}

func TestPolicyFatalNeverRetries(t *testing.T) {
	p := NewPolicy()
	attempts := []Attempt{{Number: 1, Start: time.Now(), Err: vcp.ErrFeatureUnsupported}}

	assert.Equal(t, GiveUp, p.Next(attempts, vcp.ErrFeatureUnsupported))
	assert.Equal(t, GiveUp, p.Next(attempts, mccs.ErrMalformedCapabilities))
}

func TestBackoffProgression(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    40 * time.Millisecond,
		Max:        200 * time.Millisecond,
		Multiplier: 2,
		Jitter:     0,
	})

	assert.Equal(t, 40*time.Millisecond, b.Next())
	assert.Equal(t, 80*time.Millisecond, b.Next())
	assert.Equal(t, 160*time.Millisecond, b.Next())
	assert.Equal(t, 200*time.Millisecond, b.Next())
	assert.Equal(t, 200*time.Millisecond, b.Next())
	assert.Equal(t, 5, b.Attempts())

	b.Reset()
	assert.Equal(t, 0, b.Attempts())
	assert.Equal(t, 40*time.Millisecond, b.Peek())
}

func TestBackoffLinear(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    50 * time.Millisecond,
		Max:        500 * time.Millisecond,
		Multiplier: 1,
		Jitter:     0,
	})

	assert.Equal(t, 50*time.Millisecond, b.Next())
	assert.Equal(t, 50*time.Millisecond, b.Next())
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    100 * time.Millisecond,
		Max:        100 * time.Millisecond,
		Multiplier: 2,
		Jitter:     0.25,
	})

	for i := 0; i < 50; i++ {
		d := b.Peek()
		require.GreaterOrEqual(t, d, 100*time.Millisecond)
		require.LessOrEqual(t, d, 125*time.Millisecond)
	}
}

func TestTimingDelays(t *testing.T) {
	timing := DefaultTiming()
	assert.Equal(t, 40*time.Millisecond, timing.Delay(KindGet))
	assert.Equal(t, 50*time.Millisecond, timing.Delay(KindSet))
	assert.Equal(t, 50*time.Millisecond, timing.Delay(KindCapabilities))
}

func TestAttemptOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Attempt{Number: 1}.Outcome())
	assert.Equal(t, OutcomeTransient, Attempt{Number: 1, Err: transport.ErrTimeout}.Outcome())
	assert.Equal(t, OutcomeFatal, Attempt{Number: 1, Err: vcp.ErrMalformedReply}.Outcome())
}
