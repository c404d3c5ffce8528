// Package wire implements the DDC/CI frame format carried on the monitor's
// I2C bus.
//
// A frame is a short byte sequence with a one-byte source address, a length
// byte whose high bit is always set, an opcode, an opcode-specific body and
// a trailing XOR checksum:
//
//	[source | 0x80|(1+len) | opcode | body... | checksum]
//
// The destination address is not part of the transmitted buffer (it is
// consumed by the bus addressing) but it seeds the checksum, so corruption
// of either side of the exchange is detectable.
//
// # Checksum
//
// The checksum is the running XOR of the destination write address and every
// frame byte before the checksum itself. Replies from the monitor are
// checksummed against the protocol's virtual host address 0x50 rather than a
// real bus address.
//
// The codec is strictly mechanical: it knows nothing about what an opcode
// means. Interpretation of reply bodies lives in pkg/vcp and pkg/mccs, and
// sequencing lives in pkg/protocol.
package wire
