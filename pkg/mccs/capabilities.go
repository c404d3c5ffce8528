package mccs

import (
	"fmt"

	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// Protocol is the display protocol class from the prot group.
type Protocol string

// Protocol classes named by the MCCS specification.
const (
	ProtocolMonitor Protocol = "monitor"
	ProtocolDisplay Protocol = "display"
)

// DisplayTechnology is the panel technology from the type group.
type DisplayTechnology string

// Panel technologies named by the MCCS specification.
const (
	TechnologyCRT DisplayTechnology = "crt"
	TechnologyLCD DisplayTechnology = "lcd"
	TechnologyLED DisplayTechnology = "led"
)

// Version is an MCCS specification version code.
type Version struct {
	Major uint8
	Minor uint8
}

// String renders the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// VCPEntry describes one feature from the vcp group.
type VCPEntry struct {
	// Code is the feature code.
	Code vcp.Code

	// Values is the set of permitted discrete value codes. Nil or empty
	// means the feature is continuous or unrestricted.
	Values []uint16
}

// UnknownTag is a capability group the parser does not interpret, preserved
// verbatim (including any nested parentheses).
type UnknownTag struct {
	Name  string
	Value string
}

// Capabilities is the parsed capability tree. It is built once per monitor
// session by Parse, owned by that session, and never mutated afterwards.
type Capabilities struct {
	// Protocol is the display protocol class. Empty when absent.
	Protocol Protocol

	// Technology is the panel technology. Empty when absent.
	Technology DisplayTechnology

	// Model is the monitor's model identifier. Empty when absent.
	Model string

	// Commands lists the DDC/CI opcodes the monitor claims to support.
	Commands []wire.Opcode

	// MSWHQL is the Windows Hardware Quality Labs flag.
	MSWHQL uint8

	// HasMSWHQL indicates whether the mswhql group was present.
	HasMSWHQL bool

	// Version is the MCCS version code.
	Version Version

	// HasVersion indicates whether the mccs_ver group was present.
	HasVersion bool

	// VCP lists the declared feature entries in string order.
	VCP []VCPEntry

	// Unknown holds unrecognized groups in string order.
	Unknown []UnknownTag
}

// Feature returns the VCP entry for a code.
func (c *Capabilities) Feature(code vcp.Code) (VCPEntry, bool) {
	for _, e := range c.VCP {
		if e.Code == code {
			return e, true
		}
	}
	return VCPEntry{}, false
}

// VCPValues implements vcp.CapabilitySource.
func (c *Capabilities) VCPValues(code uint8) ([]uint16, bool) {
	e, ok := c.Feature(vcp.Code(code))
	if !ok {
		return nil, false
	}
	return e.Values, true
}

// SupportsCommand reports whether the cmds group lists the opcode. Monitors
// that omit the cmds group get a permissive answer, matching how they
// behave in practice.
func (c *Capabilities) SupportsCommand(op wire.Opcode) bool {
	if len(c.Commands) == 0 {
		return true
	}
	for _, cmd := range c.Commands {
		if cmd == op {
			return true
		}
	}
	return false
}

// Compile-time interface satisfaction check.
var _ vcp.CapabilitySource = (*Capabilities)(nil)
