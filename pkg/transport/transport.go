// Package transport defines the bus access boundary of the protocol engine.
//
// The engine never touches an I2C device itself; it is handed a Transport
// that can write and read byte buffers at a bus address. Platform backends
// (Linux i2c-dev, test simulators) implement the interface and are chosen
// at session construction time. Device discovery and opening are entirely
// the backend's business.
package transport

import (
	"errors"
	"sync"
)

// Transport errors. Backends wrap their platform errors around these
// sentinels so the retry policy can classify them.
var (
	// ErrNAK indicates the addressed device did not acknowledge the
	// transfer. Monitors NAK routinely while busy; always transient.
	ErrNAK = errors.New("bus nak")

	// ErrTimeout indicates the bus transfer did not complete in time.
	ErrTimeout = errors.New("bus timeout")
)

// Transport is blocking byte-buffer access to one bus.
//
// DDC/CI is half duplex: the engine never overlaps a write and a read on
// the same address, but a Transport shared between sessions must still be
// safe for serialized use from multiple goroutines (see SharedBus).
type Transport interface {
	// Write sends data to the device at the 7-bit bus address.
	Write(addr uint8, data []byte) error

	// Read reads up to maxLen bytes from the device at the 7-bit bus
	// address. A short read is not an error at this layer; the frame codec
	// decides whether the bytes form a complete frame.
	Read(addr uint8, maxLen int) ([]byte, error)
}

// RecvBufferSize is the read size used for DDC/CI replies: double the
// maximum fragment payload, leaving room for addressing and checksum bytes
// on quirky monitors.
const RecvBufferSize = 64

// SharedBus lets multiple monitor sessions share one physical bus. It is a
// pass-through Transport plus a bus lock: the command layer holds the lock
// around each write+read exchange (including retries of a single attempt),
// so two sessions can never interleave their frame pairs.
//
// SharedBus itself does not lock per call. Locking per Write or Read would
// still allow another session to slip in between a command and its reply.
type SharedBus struct {
	mu sync.Mutex
	t  Transport
}

// NewSharedBus wraps a transport with a bus lock.
func NewSharedBus(t Transport) *SharedBus {
	return &SharedBus{t: t}
}

// Lock acquires the bus for one exchange.
func (b *SharedBus) Lock() { b.mu.Lock() }

// Unlock releases the bus.
func (b *SharedBus) Unlock() { b.mu.Unlock() }

// Write sends data on the underlying transport. The caller holds the lock.
func (b *SharedBus) Write(addr uint8, data []byte) error {
	return b.t.Write(addr, data)
}

// Read reads from the underlying transport. The caller holds the lock.
func (b *SharedBus) Read(addr uint8, maxLen int) ([]byte, error) {
	return b.t.Read(addr, maxLen)
}

// Compile-time interface satisfaction checks.
var (
	_ Transport   = (*SharedBus)(nil)
	_ sync.Locker = (*SharedBus)(nil)
)
