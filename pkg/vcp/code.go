package vcp

import "fmt"

// Code is an 8-bit VCP feature identifier.
type Code uint8

// Well-known feature codes used by the high-level monitor operations.
// The full MCCS table lives in the embedded registry.
const (
	// CodePage selects the active VCP code page. Also the value the Active
	// Control feature returns when its FIFO is empty.
	CodePage Code = 0x00

	// CodeNewControlValue signals that a control was changed at the monitor
	// (via its buttons) since the host last looked.
	CodeNewControlValue Code = 0x02

	// CodeLuminance is the backlight brightness, continuous.
	CodeLuminance Code = 0x10

	// CodeContrast is the picture contrast, continuous.
	CodeContrast Code = 0x12

	// CodeActiveControl is a FIFO of feature codes changed at the monitor.
	CodeActiveControl Code = 0x52

	// CodeInputSelect is the active video input, discrete.
	CodeInputSelect Code = 0x60

	// CodeOSDLanguage is the on-screen display language, discrete.
	CodeOSDLanguage Code = 0xCC
)

// String returns the registry name for the code, or the hex value when the
// registry does not know it.
func (c Code) String() string {
	if def, ok := Lookup(c); ok {
		return def.Name
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}
