package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddc-protocol/ddc-go/pkg/retry"
	"github.com/ddc-protocol/ddc-go/pkg/transport"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// scriptedTransport replays a fixed sequence of read results and records
// every write it sees.
type scriptedTransport struct {
	writes [][]byte
	reads  []readStep

	writeErr error
}

type readStep struct {
	data []byte
	err  error
}

func (s *scriptedTransport) Write(addr uint8, data []byte) error {
	s.writes = append(s.writes, append([]byte(nil), data...))
	return s.writeErr
}

func (s *scriptedTransport) Read(addr uint8, maxLen int) ([]byte, error) {
	if len(s.reads) == 0 {
		return nil, transport.ErrTimeout
	}
	step := s.reads[0]
	s.reads = s.reads[1:]
	return step.data, step.err
}

var _ transport.Transport = (*scriptedTransport)(nil)

// testConfig keeps the delays small enough that retry tests run in
// milliseconds.
func testConfig() Config {
	return Config{
		Policy: &retry.Policy{
			MaxAttempts: retry.DefaultMaxAttempts,
			Backoff: retry.NewBackoffWithConfig(retry.BackoffConfig{
				Initial: time.Microsecond,
				Max:     time.Millisecond,
			}),
		},
		Timing: retry.Timing{
			Get:          time.Microsecond,
			Set:          time.Microsecond,
			Capabilities: time.Microsecond,
		},
	}
}

func getVCPReply(t *testing.T, body []byte) []byte {
	t.Helper()
	raw, err := wire.EncodeReply(wire.DefaultDisplayAddr, wire.OpGetVCPReply, body)
	require.NoError(t, err)
	return raw
}

func TestConnGetVCP(t *testing.T) {
	// Luminance: continuous, maximum 100, current 50.
	bus := &scriptedTransport{reads: []readStep{
		{data: getVCPReply(t, []byte{0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32})},
	}}
	conn := NewConn(bus, testConfig())

	value, err := conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	require.NoError(t, err)
	assert.Equal(t, vcp.KindContinuous, value.Kind())
	assert.Equal(t, uint16(50), value.Current())
	assert.Equal(t, uint16(100), value.Maximum())

	require.Len(t, bus.writes, 1)
	assert.Equal(t, []byte{0x51, 0x82, 0x01, 0x10, 0xac}, bus.writes[0])
}

func TestConnGetVCPRetriesNullReply(t *testing.T) {
	null := wire.EncodeNull(wire.DefaultDisplayAddr)
	bus := &scriptedTransport{reads: []readStep{
		{data: null},
		{data: getVCPReply(t, []byte{0x00, 0x12, 0x00, 0x00, 0x64, 0x00, 0x4b})},
	}}
	conn := NewConn(bus, testConfig())

	value, err := conn.GetVCP(context.Background(), vcp.CodeContrast, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(75), value.Current())
	assert.Len(t, bus.writes, 2, "null reply must re-send the request")
}

func TestConnGetVCPRetryCeiling(t *testing.T) {
	// A bus that always times out is retried up to the ceiling, no further.
	bus := &scriptedTransport{}
	conn := NewConn(bus, testConfig())

	_, err := conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrTimeout)
	assert.Len(t, bus.writes, retry.DefaultMaxAttempts)
}

func TestConnGetVCPFatalNotRetried(t *testing.T) {
	// The monitor answers, but declares the feature unsupported. One
	// attempt, no retries.
	bus := &scriptedTransport{reads: []readStep{
		{data: getVCPReply(t, []byte{0x01, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00})},
	}}
	conn := NewConn(bus, testConfig())

	_, err := conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	assert.ErrorIs(t, err, vcp.ErrFeatureUnsupported)
	assert.Len(t, bus.writes, 1)
}

func TestConnGetVCPUnexpectedOpcode(t *testing.T) {
	reply, err := wire.EncodeReply(wire.DefaultDisplayAddr, wire.OpCapabilitiesReply, []byte{0x00, 0x00})
	require.NoError(t, err)
	bus := &scriptedTransport{reads: []readStep{{data: reply}}}
	conn := NewConn(bus, testConfig())

	_, err = conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	assert.ErrorIs(t, err, wire.ErrUnexpectedCommand)
	assert.Len(t, bus.writes, 1)
}

func TestConnGetVCPCorruptThenClean(t *testing.T) {
	clean := getVCPReply(t, []byte{0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32})
	corrupt := append([]byte(nil), clean...)
	corrupt[len(corrupt)-1] ^= 0xff

	bus := &scriptedTransport{reads: []readStep{
		{data: corrupt},
		{data: clean},
	}}
	conn := NewConn(bus, testConfig())

	value, err := conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(50), value.Current())
	assert.Len(t, bus.writes, 2)
}

func TestConnSetVCP(t *testing.T) {
	bus := &scriptedTransport{}
	conn := NewConn(bus, testConfig())

	value, err := vcp.Continuous(75, 0xffff)
	require.NoError(t, err)
	require.NoError(t, conn.SetVCP(context.Background(), vcp.CodeLuminance, value))

	// Set is write-only: no read happens, and a single frame goes out.
	require.Len(t, bus.writes, 1)
	want, err := wire.Encode(wire.DefaultDisplayAddr, wire.OpSetVCP, []byte{0x10, 0x00, 0x4b})
	require.NoError(t, err)
	assert.Equal(t, want, bus.writes[0])
}

func TestConnSetVCPRetriesNAK(t *testing.T) {
	bus := &scriptedTransport{writeErr: transport.ErrNAK}
	conn := NewConn(bus, testConfig())

	err := conn.SetVCP(context.Background(), vcp.CodeLuminance, vcp.Discrete(1))
	assert.ErrorIs(t, err, transport.ErrNAK)
	assert.Len(t, bus.writes, retry.DefaultMaxAttempts)
}

func TestConnSaveSettings(t *testing.T) {
	bus := &scriptedTransport{}
	conn := NewConn(bus, testConfig())

	require.NoError(t, conn.SaveSettings(context.Background()))
	require.Len(t, bus.writes, 1)
	assert.Equal(t, uint8(wire.OpSaveSettings), bus.writes[0][2])
}

func capsFragment(t *testing.T, offset int, data string) []byte {
	t.Helper()
	body := append([]byte{uint8(offset >> 8), uint8(offset)}, data...)
	raw, err := wire.EncodeReply(wire.DefaultDisplayAddr, wire.OpCapabilitiesReply, body)
	require.NoError(t, err)
	return raw
}

func TestConnCapabilitiesReassembly(t *testing.T) {
	const caps = "(prot(monitor)type(lcd)vcp(10 12))"
	bus := &scriptedTransport{reads: []readStep{
		capsStep(t, 0, caps[:16]),
		capsStep(t, 16, caps[16:]),
		capsStep(t, len(caps), ""),
	}}
	conn := NewConn(bus, testConfig())

	parsed, err := conn.Capabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "monitor", string(parsed.Protocol))
	_, ok := parsed.Feature(0x10)
	assert.True(t, ok)
	assert.Len(t, bus.writes, 3)

	// Each request carries its big-endian byte offset.
	assert.Equal(t, []byte{0x00, 0x00}, bus.writes[0][3:5])
	assert.Equal(t, []byte{0x00, 0x10}, bus.writes[1][3:5])
}

func capsStep(t *testing.T, offset int, data string) readStep {
	return readStep{data: capsFragment(t, offset, data)}
}

func TestConnRawCapabilitiesFragmentWithoutOffset(t *testing.T) {
	raw, err := wire.EncodeReply(wire.DefaultDisplayAddr, wire.OpCapabilitiesReply, []byte{0x00})
	require.NoError(t, err)
	bus := &scriptedTransport{reads: []readStep{{data: raw}}}
	conn := NewConn(bus, testConfig())

	_, err = conn.RawCapabilities(context.Background())
	require.Error(t, err)
	assert.Len(t, bus.writes, 1, "a malformed fragment is fatal")
}

func TestConnContextCancellation(t *testing.T) {
	bus := &scriptedTransport{}
	conn := NewConn(bus, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.GetVCP(ctx, vcp.CodeLuminance, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, bus.writes)
}

func TestConnSessionID(t *testing.T) {
	conn := NewConn(&scriptedTransport{}, testConfig())
	assert.NotEmpty(t, conn.SessionID())

	fixed := NewConn(&scriptedTransport{}, Config{SessionID: "session-1"})
	assert.Equal(t, "session-1", fixed.SessionID())
}

func TestConnBackoffResetOnSuccess(t *testing.T) {
	cfg := testConfig()
	null := wire.EncodeNull(wire.DefaultDisplayAddr)
	bus := &scriptedTransport{reads: []readStep{
		{data: null},
		{data: getVCPReply(t, []byte{0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32})},
	}}
	conn := NewConn(bus, cfg)

	_, err := conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	require.NoError(t, err)
	assert.Zero(t, cfg.Policy.Backoff.Attempts(), "success must reset the backoff")
}

func TestConnErrorMessageNamesAttempts(t *testing.T) {
	bus := &scriptedTransport{writeErr: errors.New("bus glitch")}
	conn := NewConn(bus, testConfig())

	_, err := conn.GetVCP(context.Background(), vcp.CodeLuminance, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
}
