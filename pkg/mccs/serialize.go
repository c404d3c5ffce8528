package mccs

import (
	"fmt"
	"strings"
)

// String re-serializes the tree to the capability grammar. Groups are
// emitted in a fixed order, so the output is canonical: parsing it again
// yields an equal tree, though not necessarily the byte-identical string
// the monitor sent.
func (c *Capabilities) String() string {
	var b strings.Builder
	b.WriteByte('(')

	if c.Protocol != "" {
		fmt.Fprintf(&b, "prot(%s)", c.Protocol)
	}
	if c.Technology != "" {
		fmt.Fprintf(&b, "type(%s)", c.Technology)
	}
	if c.Model != "" {
		fmt.Fprintf(&b, "model(%s)", c.Model)
	}
	if len(c.Commands) > 0 {
		b.WriteString("cmds(")
		for i, cmd := range c.Commands {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02X", uint8(cmd))
		}
		b.WriteByte(')')
	}
	if len(c.VCP) > 0 {
		b.WriteString("vcp(")
		for i, e := range c.VCP {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02X", uint8(e.Code))
			if len(e.Values) > 0 {
				b.WriteByte('(')
				for j, v := range e.Values {
					if j > 0 {
						b.WriteByte(' ')
					}
					fmt.Fprintf(&b, "%02X", v)
				}
				b.WriteByte(')')
			}
		}
		b.WriteByte(')')
	}
	if c.HasVersion {
		fmt.Fprintf(&b, "mccs_ver(%s)", c.Version)
	}
	if c.HasMSWHQL {
		fmt.Fprintf(&b, "mswhql(%d)", c.MSWHQL)
	}
	for _, tag := range c.Unknown {
		fmt.Fprintf(&b, "%s(%s)", tag.Name, tag.Value)
	}

	b.WriteByte(')')
	return b.String()
}
