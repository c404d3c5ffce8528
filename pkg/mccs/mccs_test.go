package mccs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

const sampleCaps = "(prot(monitor)type(lcd)model(X)cmds(01 02 03)" +
	"vcp(02 04 10 12(01 02 FF)14(05 08 0B))mccs_ver(2.1))"

func TestParseSample(t *testing.T) {
	caps, err := Parse(sampleCaps)
	require.NoError(t, err)

	assert.Equal(t, ProtocolMonitor, caps.Protocol)
	assert.Equal(t, TechnologyLCD, caps.Technology)
	assert.Equal(t, "X", caps.Model)
	assert.Equal(t, []wire.Opcode{wire.OpGetVCPRequest, wire.OpGetVCPReply, wire.OpSetVCP}, caps.Commands)
	require.True(t, caps.HasVersion)
	assert.Equal(t, "2.1", caps.Version.String())
	assert.False(t, caps.HasMSWHQL)

	// Code 0x12 maps to the discrete set {0x01, 0x02, 0xFF}.
	entry, ok := caps.Feature(vcp.CodeContrast)
	require.True(t, ok)
	assert.Equal(t, []uint16{0x01, 0x02, 0xFF}, entry.Values)

	// Code 0x10 is declared with no value set: continuous/unrestricted.
	entry, ok = caps.Feature(vcp.CodeLuminance)
	require.True(t, ok)
	assert.Empty(t, entry.Values)

	values, declared := caps.VCPValues(0x14)
	require.True(t, declared)
	assert.Equal(t, []uint16{0x05, 0x08, 0x0B}, values)

	_, declared = caps.VCPValues(0x60)
	assert.False(t, declared)
}

func TestParseUnknownGroupsPreserved(t *testing.T) {
	caps, err := Parse("(prot(monitor)vdisp(some(nested(stuff)) here)mccs_ver(2.2))")
	require.NoError(t, err)

	require.Len(t, caps.Unknown, 1)
	assert.Equal(t, "vdisp", caps.Unknown[0].Name)
	assert.Equal(t, "some(nested(stuff)) here", caps.Unknown[0].Value)
}

func TestParseWhitespaceTolerance(t *testing.T) {
	caps, err := Parse(" ( prot(monitor) vcp( 10  12 ( 01 02 ) ) ) ")
	require.NoError(t, err)

	require.Len(t, caps.VCP, 2)
	assert.Equal(t, vcp.CodeLuminance, caps.VCP[0].Code)
	assert.Equal(t, []uint16{0x01, 0x02}, caps.VCP[1].Values)
}

func TestParseDeepNesting(t *testing.T) {
	// Balanced nesting below the guard parses; the guard stops runaway depth.
	deep := "(x" + strings.Repeat("(a", 20) + strings.Repeat(")", 20) + ")"
	_, err := Parse(deep)
	require.NoError(t, err)

	tooDeep := "(x" + strings.Repeat("(a", 40) + strings.Repeat(")", 40) + ")"
	_, err = Parse(tooDeep)
	assert.ErrorIs(t, err, ErrMalformedCapabilities)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no outer group", input: "prot(monitor)"},
		{name: "unbalanced open", input: "(prot(monitor)"},
		{name: "unbalanced close", input: "(prot(monitor)))"},
		{name: "group without content", input: "(prot"},
		{name: "invalid vcp hex", input: "(vcp(10 zz))"},
		{name: "invalid cmds hex", input: "(cmds(01 xx))"},
		{name: "invalid vcp value hex", input: "(vcp(12(01 gg)))"},
		{name: "invalid version", input: "(mccs_ver(two.one))"},
		{name: "invalid mswhql", input: "(mswhql(yes))"},
		{name: "empty group name", input: "((monitor))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps, err := Parse(tt.input)
			assert.ErrorIs(t, err, ErrMalformedCapabilities)
			assert.Nil(t, caps)
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	inputs := []string{
		sampleCaps,
		"(prot(monitor)type(lcd)model(Generic 27)cmds(01 02 03 07 0C 4E F3 E3)" +
			"vcp(02 04 05 08 10 12 14(05 08 0B) 16 18 1A 60(01 03 11 12) CC(02 03 04))" +
			"mswhql(1)mccs_ver(2.2)vdif(3039))",
		"(type(LCD)vcp(10))",
	}

	for _, input := range inputs {
		caps, err := Parse(input)
		require.NoError(t, err)

		again, err := Parse(caps.String())
		require.NoError(t, err, "re-parsing %q", caps.String())
		assert.Equal(t, caps, again)
	}
}

func TestSupportsCommand(t *testing.T) {
	caps, err := Parse("(cmds(01 02 03))")
	require.NoError(t, err)
	assert.True(t, caps.SupportsCommand(wire.OpSetVCP))
	assert.False(t, caps.SupportsCommand(wire.OpCapabilitiesRequest))

	// No cmds group: assume support.
	caps, err = Parse("(vcp(10))")
	require.NoError(t, err)
	assert.True(t, caps.SupportsCommand(wire.OpCapabilitiesRequest))
}
