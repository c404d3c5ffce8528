//go:build linux

// Package i2c is the Linux i2c-dev transport backend.
//
// It drives a /dev/i2c-N character device directly. DDC/CI rides on plain
// I2C transfers, so no SMBus helpers are involved: a frame write is one
// bus write, a reply read is one bus read.
//
// Opening the right device node is the caller's job; monitors usually sit
// on the bus belonging to the graphics connector (look for "DDC" in
// /sys/class/i2c-dev/*/name).
package i2c

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/ddc-protocol/ddc-go/pkg/transport"
)

// i2cSlave is the I2C_SLAVE ioctl selecting the peer address for
// subsequent read/write calls on the file descriptor.
const i2cSlave = 0x0703

// Bus is an open i2c-dev device node.
type Bus struct {
	f    *os.File
	addr uint8
}

var _ transport.Transport = (*Bus)(nil)

// Open opens an i2c-dev device node, e.g. /dev/i2c-4.
func Open(path string) (*Bus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening i2c device: %w", err)
	}
	return &Bus{f: f}, nil
}

// Close releases the device node.
func (b *Bus) Close() error {
	return b.f.Close()
}

// setAddr points the descriptor at a 7-bit peer address. The kernel keeps
// the address per descriptor, so it is only changed when it differs from
// the last transfer's.
func (b *Bus) setAddr(addr uint8) error {
	if addr == b.addr {
		return nil
	}
	if err := unix.IoctlSetInt(int(b.f.Fd()), i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("selecting bus address 0x%02x: %w", addr, err)
	}
	b.addr = addr
	return nil
}

// Write sends one buffer to the device at the given address.
func (b *Bus) Write(addr uint8, data []byte) error {
	if err := b.setAddr(addr); err != nil {
		return err
	}
	if _, err := b.f.Write(data); err != nil {
		return wrapBusError(err)
	}
	return nil
}

// Read reads up to maxLen bytes from the device at the given address.
func (b *Bus) Read(addr uint8, maxLen int) ([]byte, error) {
	if err := b.setAddr(addr); err != nil {
		return nil, err
	}
	buf := make([]byte, maxLen)
	n, err := b.f.Read(buf)
	if err != nil {
		return nil, wrapBusError(err)
	}
	return buf[:n], nil
}

// wrapBusError maps kernel I2C errors onto the transport sentinels so the
// retry policy can classify them. EREMOTEIO and ENXIO are how i2c-dev
// reports a NAK.
func wrapBusError(err error) error {
	switch {
	case errors.Is(err, unix.EREMOTEIO), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%w: %v", transport.ErrNAK, err)
	case errors.Is(err, unix.ETIMEDOUT):
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	default:
		return fmt.Errorf("i2c transfer: %w", err)
	}
}
