package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful during development to see bus traffic in console output.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("bus_addr", fmt.Sprintf("0x%02x", event.BusAddr)),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.String("frame_data", fmt.Sprintf("% 02x", event.Frame.Data)),
		)
	case event.Exchange != nil:
		attrs = append(attrs,
			slog.String("opcode", fmt.Sprintf("0x%02x", event.Exchange.Opcode)),
			slog.String("kind", event.Exchange.Kind),
			slog.Int("attempt", event.Exchange.Attempt),
			slog.String("state", event.Exchange.State),
		)
		if event.Exchange.Outcome != "" {
			attrs = append(attrs, slog.String("outcome", event.Exchange.Outcome))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error", event.Error.Message),
			slog.Bool("transient", event.Error.Transient),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "ddc event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
