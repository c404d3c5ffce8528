package wire

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrChecksumMismatch indicates the recomputed checksum disagrees with
	// the one on the wire. Never swallowed: silently accepting corruption is
	// the most dangerous failure mode for a device-control protocol.
	ErrChecksumMismatch = errors.New("frame checksum mismatch")

	// ErrTruncated indicates fewer bytes were supplied than the frame's
	// length byte declares.
	ErrTruncated = errors.New("frame truncated")

	// ErrUnexpectedCommand indicates the reply carried a different opcode
	// than the exchange expects.
	ErrUnexpectedCommand = errors.New("unexpected command byte")

	// ErrInvalidLength indicates a length byte without the marker bit, or a
	// body larger than the protocol allows.
	ErrInvalidLength = errors.New("invalid frame length")
)

// Encode builds the host-side transmit buffer for a request to the monitor
// at the given 7-bit bus address.
//
// The returned buffer is [HostSourceAddr | 0x80|(1+len) | opcode | body |
// checksum]; the checksum is seeded with the destination write address.
func Encode(busAddr uint8, op Opcode, body []byte) ([]byte, error) {
	return encode(WriteAddr(busAddr), HostSourceAddr, op, body)
}

// EncodeReply builds the monitor-side transmit buffer for a reply. The
// source address is the monitor's own write address and the checksum is
// seeded with the host's virtual destination address. Used by simulated
// monitors; a real monitor produces these bytes itself.
func EncodeReply(busAddr uint8, op Opcode, body []byte) ([]byte, error) {
	return encode(HostDestAddr, WriteAddr(busAddr), op, body)
}

// EncodeNull builds the null frame a monitor emits when it has no reply.
func EncodeNull(busAddr uint8) []byte {
	buf := []byte{WriteAddr(busAddr), LengthMarker}
	return append(buf, checksum(HostDestAddr, buf))
}

func encode(seed, source uint8, op Opcode, body []byte) ([]byte, error) {
	if len(body)+1 > MaxFragmentLength {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds fragment limit", ErrInvalidLength, len(body))
	}
	buf := make([]byte, 0, 3+len(body)+1)
	buf = append(buf, source, LengthMarker|uint8(1+len(body)), uint8(op))
	buf = append(buf, body...)
	return append(buf, checksum(seed, buf)), nil
}

// Decode parses a reply buffer read from the monitor. The checksum is
// recomputed against the host's virtual destination address.
func Decode(raw []byte) (*Frame, error) {
	return decode(HostDestAddr, raw)
}

// DecodeExpect decodes a reply and additionally verifies its opcode,
// returning ErrUnexpectedCommand on a mismatch. Null frames pass through
// undisturbed so the caller can apply its not-ready handling.
func DecodeExpect(raw []byte, want Opcode) (*Frame, error) {
	f, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if !f.IsNull() && f.Command != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedCommand, f.Command, want)
	}
	return f, nil
}

// DecodeRequest parses a host-side request buffer as received by the monitor
// at the given bus address. Used by simulated monitors and log tooling.
func DecodeRequest(busAddr uint8, raw []byte) (*Frame, error) {
	return decode(WriteAddr(busAddr), raw)
}

func decode(seed uint8, raw []byte) (*Frame, error) {
	if len(raw) < 3 {
		return nil, fmt.Errorf("%w: %d bytes is below the minimum frame size", ErrTruncated, len(raw))
	}
	lengthByte := raw[1]
	if lengthByte&LengthMarker == 0 {
		return nil, fmt.Errorf("%w: marker bit not set in 0x%02x", ErrInvalidLength, lengthByte)
	}
	length := int(lengthByte & 0x7f)
	if length > MaxFragmentLength {
		return nil, fmt.Errorf("%w: declared body of %d bytes exceeds fragment limit", ErrInvalidLength, length)
	}
	// source + length byte + declared body + checksum
	total := 2 + length + 1
	if len(raw) < total {
		return nil, fmt.Errorf("%w: declared %d bytes, got %d", ErrTruncated, total, len(raw))
	}
	want := raw[total-1]
	if got := checksum(seed, raw[:total-1]); got != want {
		return nil, fmt.Errorf("%w: computed 0x%02x, frame carries 0x%02x", ErrChecksumMismatch, got, want)
	}

	f := &Frame{Source: raw[0]}
	if length > 0 {
		f.Command = Opcode(raw[2])
		if length > 1 {
			f.Body = append([]byte(nil), raw[3:2+length]...)
		}
	}
	return f, nil
}
