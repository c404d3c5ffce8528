package wire

// Opcode is a DDC/CI command byte.
type Opcode uint8

const (
	// OpGetVCPRequest asks the monitor for the current value of a VCP feature.
	OpGetVCPRequest Opcode = 0x01

	// OpGetVCPReply carries the monitor's answer to a Get-VCP request.
	OpGetVCPReply Opcode = 0x02

	// OpSetVCP writes a new value for a VCP feature.
	OpSetVCP Opcode = 0x03

	// OpTimingReply carries a timing report (not issued by this module).
	OpTimingReply Opcode = 0x06

	// OpTimingRequest asks for a timing report (not issued by this module).
	OpTimingRequest Opcode = 0x07

	// OpResetVCP resets a VCP feature to its factory default.
	OpResetVCP Opcode = 0x09

	// OpSaveSettings instructs the monitor to persist its current settings.
	OpSaveSettings Opcode = 0x0C

	// OpSelfTestReply carries a display self-test result.
	OpSelfTestReply Opcode = 0xA1

	// OpSelfTestRequest starts a display self-test.
	OpSelfTestRequest Opcode = 0xB1

	// OpIdentificationReply carries an identification string fragment.
	OpIdentificationReply Opcode = 0xE1

	// OpTableReadRequest reads a VCP table fragment (not issued by this module).
	OpTableReadRequest Opcode = 0xE2

	// OpCapabilitiesReply carries a capability string fragment.
	OpCapabilitiesReply Opcode = 0xE3

	// OpTableReadReply carries a VCP table fragment (not issued by this module).
	OpTableReadReply Opcode = 0xE4

	// OpTableWrite writes a VCP table fragment (not issued by this module).
	OpTableWrite Opcode = 0xE7

	// OpIdentificationRequest asks for the monitor's identification string.
	OpIdentificationRequest Opcode = 0xF1

	// OpCapabilitiesRequest asks for a capability string fragment at an offset.
	OpCapabilitiesRequest Opcode = 0xF3

	// OpEnableApplicationReport enables application message reporting.
	OpEnableApplicationReport Opcode = 0xF5
)

// String returns the opcode name.
func (o Opcode) String() string {
	switch o {
	case OpGetVCPRequest:
		return "GET_VCP_REQUEST"
	case OpGetVCPReply:
		return "GET_VCP_REPLY"
	case OpSetVCP:
		return "SET_VCP"
	case OpTimingRequest:
		return "TIMING_REQUEST"
	case OpTimingReply:
		return "TIMING_REPLY"
	case OpResetVCP:
		return "RESET_VCP"
	case OpSaveSettings:
		return "SAVE_SETTINGS"
	case OpSelfTestRequest:
		return "SELF_TEST_REQUEST"
	case OpSelfTestReply:
		return "SELF_TEST_REPLY"
	case OpIdentificationRequest:
		return "IDENTIFICATION_REQUEST"
	case OpIdentificationReply:
		return "IDENTIFICATION_REPLY"
	case OpCapabilitiesRequest:
		return "CAPABILITIES_REQUEST"
	case OpCapabilitiesReply:
		return "CAPABILITIES_REPLY"
	case OpTableReadRequest:
		return "TABLE_READ_REQUEST"
	case OpTableReadReply:
		return "TABLE_READ_REPLY"
	case OpTableWrite:
		return "TABLE_WRITE"
	case OpEnableApplicationReport:
		return "ENABLE_APPLICATION_REPORT"
	default:
		return "UNKNOWN"
	}
}

// IsReply reports whether the opcode is sent by the monitor.
func (o Opcode) IsReply() bool {
	switch o {
	case OpGetVCPReply, OpTimingReply, OpSelfTestReply,
		OpIdentificationReply, OpCapabilitiesReply, OpTableReadReply:
		return true
	default:
		return false
	}
}
