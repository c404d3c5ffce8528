package mccs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// ErrMalformedCapabilities indicates the capability string violates the
// grammar: unbalanced parentheses, invalid hexadecimal tokens, truncated
// input or nesting beyond the guard depth. The parse never recovers
// partially.
var ErrMalformedCapabilities = errors.New("malformed capability string")

// maxNestingDepth bounds parenthesis nesting. Real capability strings use
// two or three levels; the guard stops adversarial input from growing the
// stack without limit.
const maxNestingDepth = 32

// Parse parses a complete capability string into a Capabilities tree.
// This is the only way a Capabilities value is constructed.
func Parse(s string) (*Capabilities, error) {
	p := &parser{input: s}
	caps, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCapabilities, err)
	}
	return caps, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parse() (*Capabilities, error) {
	p.skipSpaces()
	if !p.consume('(') {
		return nil, fmt.Errorf("expected '(' at position %d", p.pos)
	}

	caps := &Capabilities{}
	for {
		p.skipSpaces()
		if p.consume(')') {
			break
		}
		if p.eof() {
			return nil, errors.New("unbalanced parentheses: input ended inside the top-level group")
		}

		tag, err := p.readTag()
		if err != nil {
			return nil, err
		}
		content, err := p.readGroup(1)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", tag, err)
		}
		if err := caps.apply(tag, content); err != nil {
			return nil, fmt.Errorf("group %q: %w", tag, err)
		}
	}

	p.skipSpaces()
	if !p.eof() {
		return nil, fmt.Errorf("trailing data after the top-level group at position %d", p.pos)
	}
	return caps, nil
}

// readTag consumes a group name up to its opening parenthesis.
func (p *parser) readTag() (string, error) {
	start := p.pos
	for !p.eof() {
		switch p.input[p.pos] {
		case '(':
			tag := strings.TrimSpace(p.input[start:p.pos])
			if tag == "" {
				return "", fmt.Errorf("empty group name at position %d", start)
			}
			return tag, nil
		case ')':
			return "", fmt.Errorf("unexpected ')' in group name at position %d", p.pos)
		}
		p.pos++
	}
	return "", errors.New("truncated input: group name without content")
}

// readGroup consumes a balanced parenthesized group and returns its inner
// text, nested parentheses included. baseDepth is how deep the caller
// already is.
func (p *parser) readGroup(baseDepth int) (string, error) {
	if !p.consume('(') {
		return "", fmt.Errorf("expected '(' at position %d", p.pos)
	}
	start := p.pos
	depth := 1
	for !p.eof() {
		switch p.input[p.pos] {
		case '(':
			depth++
			if baseDepth+depth > maxNestingDepth {
				return "", fmt.Errorf("nesting deeper than %d levels", maxNestingDepth)
			}
		case ')':
			depth--
			if depth == 0 {
				content := p.input[start:p.pos]
				p.pos++
				return content, nil
			}
		}
		p.pos++
	}
	return "", errors.New("unbalanced parentheses: group never closed")
}

func (p *parser) skipSpaces() {
	for !p.eof() {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consume(c byte) bool {
	if p.eof() || p.input[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

// apply interprets one top-level group.
func (c *Capabilities) apply(tag, content string) error {
	switch tag {
	case "prot":
		c.Protocol = Protocol(strings.TrimSpace(content))
	case "type":
		c.Technology = DisplayTechnology(strings.ToLower(strings.TrimSpace(content)))
	case "model":
		c.Model = strings.TrimSpace(content)
	case "cmds":
		cmds, err := parseHexBytes(content)
		if err != nil {
			return err
		}
		c.Commands = make([]wire.Opcode, len(cmds))
		for i, b := range cmds {
			c.Commands[i] = wire.Opcode(b)
		}
	case "mswhql":
		v, err := strconv.ParseUint(strings.TrimSpace(content), 10, 8)
		if err != nil {
			return fmt.Errorf("invalid mswhql value %q", content)
		}
		c.MSWHQL = uint8(v)
		c.HasMSWHQL = true
	case "mccs_ver":
		ver, err := parseVersion(content)
		if err != nil {
			return err
		}
		c.Version = ver
		c.HasVersion = true
	case "vcp", "VCP":
		entries, err := parseVCPGroup(content)
		if err != nil {
			return err
		}
		c.VCP = entries
	default:
		c.Unknown = append(c.Unknown, UnknownTag{Name: tag, Value: content})
	}
	return nil
}

// parseVCPGroup parses the vcp group content: whitespace-separated hex
// feature codes, each optionally followed by a parenthesized list of
// permitted discrete values.
func parseVCPGroup(content string) ([]VCPEntry, error) {
	p := &parser{input: content}
	var entries []VCPEntry
	for {
		p.skipSpaces()
		if p.eof() {
			return entries, nil
		}

		codeTok, err := p.readHexToken()
		if err != nil {
			return nil, err
		}
		code, err := strconv.ParseUint(codeTok, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid vcp feature code %q", codeTok)
		}
		entry := VCPEntry{Code: vcp.Code(code)}

		p.skipSpaces()
		if !p.eof() && p.input[p.pos] == '(' {
			// vcp groups nest exactly one level below the top-level group.
			inner, err := p.readGroup(2)
			if err != nil {
				return nil, err
			}
			values, err := parseHexWords(inner)
			if err != nil {
				return nil, fmt.Errorf("feature %02X: %w", code, err)
			}
			entry.Values = values
		}
		entries = append(entries, entry)
	}
}

// readHexToken consumes one run of hexadecimal digits.
func (p *parser) readHexToken() (string, error) {
	start := p.pos
	for !p.eof() && isHexDigit(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		if p.eof() {
			return "", errors.New("truncated input: expected hexadecimal token")
		}
		return "", fmt.Errorf("expected hexadecimal token at position %d, found %q", p.pos, rune(p.input[p.pos]))
	}
	return p.input[start:p.pos], nil
}

// parseHexBytes parses a whitespace-separated list of hex bytes.
func parseHexBytes(content string) ([]uint8, error) {
	var out []uint8
	for _, tok := range strings.Fields(content) {
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hexadecimal token %q", tok)
		}
		out = append(out, uint8(v))
	}
	return out, nil
}

// parseHexWords parses a whitespace-separated list of hex values up to 16
// bits, as found in discrete value sets.
func parseHexWords(content string) ([]uint16, error) {
	var out []uint16
	for _, tok := range strings.Fields(content) {
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid hexadecimal token %q", tok)
		}
		out = append(out, uint16(v))
	}
	return out, nil
}

// parseVersion parses "major.minor".
func parseVersion(content string) (Version, error) {
	parts := strings.SplitN(strings.TrimSpace(content), ".", 2)
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q", content)
	}
	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q", content)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q", content)
	}
	return Version{Major: uint8(major), Minor: uint8(minor)}, nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
