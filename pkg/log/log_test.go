package log

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		Timestamp: time.Now().UTC(),
		SessionID: "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		BusAddr:   0x37,
		Direction: DirectionOut,
		Layer:     LayerWire,
		Category:  CategoryFrame,
		Frame: &FrameEvent{
			Size: 5,
			Data: []byte{0x51, 0x82, 0x01, 0x10, 0xac},
		},
	}
}

func TestEventCBORRoundTrip(t *testing.T) {
	event := sampleEvent()

	data, err := EncodeEvent(event)
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.Equal(t, event.SessionID, decoded.SessionID)
	assert.Equal(t, event.BusAddr, decoded.BusAddr)
	assert.Equal(t, event.Direction, decoded.Direction)
	require.NotNil(t, decoded.Frame)
	assert.Equal(t, event.Frame.Data, decoded.Frame.Data)
	assert.WithinDuration(t, event.Timestamp, decoded.Timestamp, time.Microsecond)
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.dlog")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	first := sampleEvent()
	second := sampleEvent()
	second.Direction = DirectionIn
	second.Category = CategoryExchange
	second.Frame = nil
	second.Exchange = &ExchangeEvent{
		Opcode:  0x01,
		Kind:    "GET",
		Feature: 0x10,
		Attempt: 1,
		State:   "DECODED",
		Outcome: "SUCCESS",
		Elapsed: 42 * time.Millisecond,
	}

	logger.Log(first)
	logger.Log(second)
	require.NoError(t, logger.Close())

	// Logging after close is ignored, and Close is idempotent.
	logger.Log(first)
	require.NoError(t, logger.Close())

	reader, err := OpenFile(path)
	require.NoError(t, err)
	defer reader.Close()

	events, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, CategoryFrame, events[0].Category)
	require.NotNil(t, events[1].Exchange)
	assert.Equal(t, "GET", events[1].Exchange.Kind)
	assert.Equal(t, uint8(0x10), events[1].Exchange.Feature)
}

func TestMultiLogger(t *testing.T) {
	var got []Event
	capture := loggerFunc(func(e Event) { got = append(got, e) })

	m := NewMultiLogger(NoopLogger{}, nil, capture)
	m.Log(sampleEvent())

	assert.Len(t, got, 1)
}

// loggerFunc adapts a function to the Logger interface.
type loggerFunc func(Event)

func (f loggerFunc) Log(e Event) { f(e) }

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(sampleEvent())

	out := buf.String()
	assert.Contains(t, out, "ddc event")
	assert.Contains(t, out, "bus_addr=0x37")
	assert.Contains(t, out, "direction=OUT")
}
