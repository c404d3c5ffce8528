package protocol

import (
	"context"
	"fmt"

	"github.com/ddc-protocol/ddc-go/pkg/mccs"
	"github.com/ddc-protocol/ddc-go/pkg/retry"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// maxCapabilitiesLength bounds the reassembled capability string. Real
// strings are a few hundred bytes; the bound stops a monitor that never
// sends a terminating fragment from growing the buffer forever.
const maxCapabilitiesLength = 4096

// GetVCP reads the current value of a VCP feature. The capability source
// may be nil; when present it is used to validate discrete reply values.
func (c *Conn) GetVCP(ctx context.Context, feature vcp.Code, caps vcp.CapabilitySource) (vcp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame, err := c.exchange(ctx, retry.KindGet, wire.OpGetVCPRequest,
		[]byte{uint8(feature)}, wire.OpGetVCPReply, true)
	if err != nil {
		return vcp.Value{}, err
	}
	return vcp.DecodeReply(feature, frame.Body, caps)
}

// SetVCP writes a new value for a VCP feature. Set is fire-and-forget per
// the standard: the monitor sends no confirmation, and this method does not
// read the value back. Callers wanting verification issue their own GetVCP.
func (c *Conn) SetVCP(ctx context.Context, feature vcp.Code, value vcp.Value) error {
	body, err := vcp.EncodeSet(feature, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.exchange(ctx, retry.KindSet, wire.OpSetVCP, body, 0, false)
	return err
}

// SaveSettings instructs the monitor to persist its current settings.
func (c *Conn) SaveSettings(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.exchange(ctx, retry.KindSet, wire.OpSaveSettings, nil, 0, false)
	return err
}

// RawCapabilities reads the monitor's capability string, reassembling it
// from fragments. The monitor returns the string in fragments addressed by
// byte offset; the loop requests increasing offsets until an empty
// fragment marks the end.
func (c *Conn) RawCapabilities(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var assembled []byte
	offset := 0
	for {
		body := []byte{uint8(offset >> 8), uint8(offset)}
		frame, err := c.exchange(ctx, retry.KindCapabilities, wire.OpCapabilitiesRequest,
			body, wire.OpCapabilitiesReply, true)
		if err != nil {
			return "", err
		}

		// A fragment body is the echoed two-byte offset followed by data.
		if len(frame.Body) < 2 {
			return "", fmt.Errorf("%w: fragment without offset header", mccs.ErrMalformedCapabilities)
		}
		data := frame.Body[2:]
		if len(data) == 0 {
			return string(assembled), nil
		}

		assembled = append(assembled, data...)
		if len(assembled) > maxCapabilitiesLength {
			return "", fmt.Errorf("%w: string exceeds %d bytes without terminating",
				mccs.ErrMalformedCapabilities, maxCapabilitiesLength)
		}
		offset += len(data)
	}
}

// Capabilities reads and parses the monitor's capability string.
func (c *Conn) Capabilities(ctx context.Context) (*mccs.Capabilities, error) {
	raw, err := c.RawCapabilities(ctx)
	if err != nil {
		return nil, err
	}
	return mccs.Parse(raw)
}
