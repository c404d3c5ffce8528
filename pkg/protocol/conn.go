package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ddc-protocol/ddc-go/pkg/log"
	"github.com/ddc-protocol/ddc-go/pkg/retry"
	"github.com/ddc-protocol/ddc-go/pkg/transport"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// Config holds optional Conn settings. The zero value picks the standard
// monitor address, default policy and timing, and no logging.
type Config struct {
	// Addr is the monitor's 7-bit bus address.
	Addr uint8

	// Policy is the retry policy shared by this session's exchanges.
	Policy *retry.Policy

	// Timing carries the minimum inter-command delays.
	Timing retry.Timing

	// Logger receives protocol events.
	Logger log.Logger

	// SessionID tags log events. Generated when empty.
	SessionID string
}

// Conn is a synchronous DDC/CI command channel to one monitor. Exchanges
// are serialized: DDC/CI is half duplex and a monitor cannot take a new
// command until it finished replying to the previous one.
type Conn struct {
	mu sync.Mutex

	t       transport.Transport
	busLock sync.Locker
	addr    uint8

	policy    *retry.Policy
	timing    retry.Timing
	logger    log.Logger
	sessionID string
}

// NewConn creates a command channel over the given transport.
func NewConn(t transport.Transport, cfg Config) *Conn {
	if cfg.Addr == 0 {
		cfg.Addr = wire.DefaultDisplayAddr
	}
	if cfg.Policy == nil {
		cfg.Policy = retry.NewPolicy()
	}
	if (cfg.Timing == retry.Timing{}) {
		cfg.Timing = retry.DefaultTiming()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	c := &Conn{
		t:         t,
		addr:      cfg.Addr,
		policy:    cfg.Policy,
		timing:    cfg.Timing,
		logger:    cfg.Logger,
		sessionID: cfg.SessionID,
	}
	// Sessions sharing a physical bus hold its lock across each attempt.
	if locker, ok := t.(sync.Locker); ok {
		c.busLock = locker
	}
	return c
}

// Addr returns the monitor's bus address.
func (c *Conn) Addr() uint8 {
	return c.addr
}

// SessionID returns the identifier this session's log events carry.
func (c *Conn) SessionID() string {
	return c.sessionID
}

// exchange runs the write(+read) state machine for one command, re-sending
// the identical frame on transient errors until the policy gives up.
// withReply is false for write-only commands (Set, save); those return a
// nil frame on success.
func (c *Conn) exchange(ctx context.Context, kind retry.CommandKind, op wire.Opcode, body []byte, expect wire.Opcode, withReply bool) (*wire.Frame, error) {
	request, err := wire.Encode(c.addr, op, body)
	if err != nil {
		return nil, err
	}

	feature := uint8(0)
	if op == wire.OpGetVCPRequest || op == wire.OpSetVCP {
		feature = body[0]
	}

	started := time.Now()
	var attempts []retry.Attempt

	for {
		attempt := retry.Attempt{Number: len(attempts) + 1, Start: time.Now()}
		c.logExchange(kind, op, feature, attempt.Number, StateSent, "", started)

		frame, err := c.attempt(ctx, kind, request, expect, withReply)
		attempt.Err = err
		attempts = append(attempts, attempt)

		if err == nil {
			c.logExchange(kind, op, feature, attempt.Number, StateDecoded, retry.OutcomeSuccess.String(), started)
			c.policy.Backoff.Reset()
			return frame, nil
		}

		outcome := retry.Classify(err)
		c.logError(err, outcome == retry.OutcomeTransient)

		action := c.policy.Next(attempts, err)
		if !action.Retry {
			c.logExchange(kind, op, feature, attempt.Number, StateFailed, outcome.String(), started)
			if outcome == retry.OutcomeTransient {
				return nil, fmt.Errorf("%s exchange gave up after %d attempts: %w", kind, len(attempts), err)
			}
			return nil, err
		}

		c.logExchange(kind, op, feature, attempt.Number, StateAwaitingReply, outcome.String(), started)
		if err := sleep(ctx, action.After); err != nil {
			return nil, err
		}
	}
}

// attempt performs a single write(+delay+read) with the bus held.
func (c *Conn) attempt(ctx context.Context, kind retry.CommandKind, request []byte, expect wire.Opcode, withReply bool) (*wire.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.busLock != nil {
		c.busLock.Lock()
		defer c.busLock.Unlock()
	}

	c.logFrame(log.DirectionOut, log.LayerTransport, request)
	if err := c.t.Write(c.addr, request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	// The standard's minimum pause before the monitor may be addressed
	// again. Skipping it makes monitors silently drop the command.
	if err := sleep(ctx, c.timing.Delay(kind)); err != nil {
		return nil, err
	}
	if !withReply {
		return nil, nil
	}

	raw, err := c.t.Read(c.addr, transport.RecvBufferSize)
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	c.logFrame(log.DirectionIn, log.LayerTransport, raw)

	frame, err := wire.DecodeExpect(raw, expect)
	if err != nil {
		return nil, err
	}
	if frame.IsNull() {
		return nil, retry.ErrNotReady
	}
	return frame, nil
}

// sleep blocks for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Conn) logFrame(dir log.Direction, layer log.Layer, data []byte) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		BusAddr:   c.addr,
		Direction: dir,
		Layer:     layer,
		Category:  log.CategoryFrame,
		Frame:     &log.FrameEvent{Size: len(data), Data: data},
	})
}

func (c *Conn) logExchange(kind retry.CommandKind, op wire.Opcode, feature uint8, attempt int, state State, outcome string, started time.Time) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		BusAddr:   c.addr,
		Direction: log.DirectionOut,
		Layer:     log.LayerProtocol,
		Category:  log.CategoryExchange,
		Exchange: &log.ExchangeEvent{
			Opcode:  uint8(op),
			Kind:    kind.String(),
			Feature: feature,
			Attempt: attempt,
			State:   state.String(),
			Outcome: outcome,
			Elapsed: time.Since(started),
		},
	})
}

func (c *Conn) logError(err error, transient bool) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		BusAddr:   c.addr,
		Direction: log.DirectionIn,
		Layer:     log.LayerProtocol,
		Category:  log.CategoryError,
		Error:     &log.ErrorEvent{Message: err.Error(), Transient: transient},
	})
}
