package wire

// Protocol address constants.
const (
	// HostSourceAddr is the virtual source address the host stamps on
	// outgoing frames.
	HostSourceAddr = 0x51

	// HostDestAddr is the virtual destination address replies are
	// checksummed against.
	HostDestAddr = 0x50

	// DefaultDisplayAddr is the 7-bit I2C address of a DDC/CI monitor.
	DefaultDisplayAddr = 0x37
)

// Framing constants.
const (
	// LengthMarker is the bit that is always set in the length byte,
	// distinguishing it from data.
	LengthMarker = 0x80

	// MaxFragmentLength is the maximum body length a single frame may carry.
	MaxFragmentLength = 32

	// MaxFrameSize is the largest buffer a well-formed frame can occupy:
	// source, length, opcode, body and checksum.
	MaxFrameSize = 3 + MaxFragmentLength + 1
)

// Frame is a decoded DDC/CI message. A Frame is transient: it is built for
// one exchange and discarded.
type Frame struct {
	// Source is the address byte the sender stamped on the frame.
	Source uint8

	// Command is the opcode. Zero for the null frame.
	Command Opcode

	// Body is the opcode-specific payload (without opcode and checksum).
	Body []byte
}

// IsNull reports whether this is the DDC null frame, the empty message a
// monitor returns when it has nothing to say or is not ready yet.
func (f *Frame) IsNull() bool {
	return f.Command == 0 && len(f.Body) == 0
}

// WriteAddr converts a 7-bit bus address to the 8-bit write address that
// seeds request checksums.
func WriteAddr(busAddr uint8) uint8 {
	return busAddr << 1
}

// checksum XORs the seed with every byte of the buffer.
func checksum(seed uint8, buf []byte) uint8 {
	sum := seed
	for _, b := range buf {
		sum ^= b
	}
	return sum
}
