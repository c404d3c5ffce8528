package sim

import (
	"fmt"
	"sync"

	"github.com/ddc-protocol/ddc-go/pkg/transport"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
	"github.com/ddc-protocol/ddc-go/pkg/wire"
)

// DefaultCapabilities is the capability string the default monitor serves.
// It matches the feature table built by NewMonitor.
const DefaultCapabilities = "(prot(monitor)type(lcd)model(SIM-27)cmds(01 02 03 0C F3)" +
	"vcp(02 10 12 52 60(01 03 11 12) CC(01 02 03 04))mccs_ver(2.2))"

// fragmentDataSize is how many capability string bytes one reply carries.
// Small enough that any realistic string needs several fragments, the way
// real monitors behave.
const fragmentDataSize = 16

// feature is one row of the simulated VCP table.
type feature struct {
	kind    vcp.Kind
	current uint16
	maximum uint16
	values  []uint16
}

func (f *feature) accepts(v uint16) bool {
	if f.kind == vcp.KindContinuous {
		return v <= f.maximum
	}
	for _, code := range f.values {
		if code == v {
			return true
		}
	}
	return false
}

// Monitor is an in-memory DDC/CI display. It implements
// transport.Transport: writes are decoded as request frames and reads
// return the prepared reply, or the null frame when none is pending.
//
// All methods are safe for concurrent use.
type Monitor struct {
	mu sync.Mutex

	addr     uint8
	caps     string
	features map[vcp.Code]*feature

	// pending is the reply prepared by the last request, nil when the
	// monitor has nothing to say.
	pending []byte

	// changed queues feature codes whose values changed behind the host's
	// back, drained through the active-control feature.
	changed []vcp.Code

	saves int

	// Fault injection counters, decremented as they fire.
	nakReads     int
	corruptReads int
	busyReads    int
}

var _ transport.Transport = (*Monitor)(nil)

// NewMonitor creates a monitor at the standard bus address with a typical
// LCD feature table: luminance 50/100, contrast 75/100, four input sources
// and four OSD languages.
func NewMonitor() *Monitor {
	return &Monitor{
		addr: wire.DefaultDisplayAddr,
		caps: DefaultCapabilities,
		features: map[vcp.Code]*feature{
			vcp.CodeNewControlValue: {kind: vcp.KindDiscrete, current: 0x01, values: []uint16{0x01, 0x02}},
			vcp.CodeLuminance:       {kind: vcp.KindContinuous, current: 50, maximum: 100},
			vcp.CodeContrast:        {kind: vcp.KindContinuous, current: 75, maximum: 100},
			vcp.CodeActiveControl:   {kind: vcp.KindDiscrete, current: 0x00, values: []uint16{0x00}},
			vcp.CodeInputSelect:     {kind: vcp.KindDiscrete, current: 0x11, values: []uint16{0x01, 0x03, 0x11, 0x12}},
			vcp.CodeOSDLanguage:     {kind: vcp.KindDiscrete, current: 0x02, values: []uint16{0x01, 0x02, 0x03, 0x04}},
		},
	}
}

// SetCapabilities replaces the capability string the monitor serves. The
// feature table is not derived from it; tests use this to serve malformed
// or mismatched strings.
func (m *Monitor) SetCapabilities(caps string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps = caps
}

// Feature returns the current and maximum value of a feature.
func (m *Monitor) Feature(code vcp.Code) (current, maximum uint16, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.features[code]
	if !ok {
		return 0, 0, false
	}
	return f.current, f.maximum, true
}

// SaveCount returns how many save-settings commands the monitor received.
func (m *Monitor) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SimulateUserChange changes a feature as if through the physical OSD and
// queues it for the host to discover via the new-control-value and
// active-control features.
func (m *Monitor) SimulateUserChange(code vcp.Code, value uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.features[code]
	if !ok {
		return fmt.Errorf("simulated monitor has no feature %s", code)
	}
	if !f.accepts(value) {
		return fmt.Errorf("value %d not accepted by feature %s", value, code)
	}
	f.current = value
	m.changed = append(m.changed, code)
	return nil
}

// InjectNAK makes the next n reads fail with a bus NAK.
func (m *Monitor) InjectNAK(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nakReads = n
}

// InjectCorrupt flips a bit in the next n replies.
func (m *Monitor) InjectCorrupt(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corruptReads = n
}

// InjectBusy makes the monitor answer the next n reads with the null
// frame, as a busy monitor does.
func (m *Monitor) InjectBusy(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busyReads = n
}

// Write receives a host request frame. A request for another bus address
// is NAKed.
func (m *Monitor) Write(addr uint8, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if addr != m.addr {
		return transport.ErrNAK
	}
	frame, err := wire.DecodeRequest(m.addr, data)
	if err != nil {
		// A garbled request gets no reply at all; the host's read will
		// see the null frame and retry.
		m.pending = nil
		return nil
	}
	m.pending = m.handle(frame)
	return nil
}

// Read returns the reply prepared by the last request, or the null frame.
func (m *Monitor) Read(addr uint8, maxLen int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if addr != m.addr {
		return nil, transport.ErrNAK
	}
	if m.nakReads > 0 {
		m.nakReads--
		return nil, transport.ErrNAK
	}
	if m.busyReads > 0 {
		m.busyReads--
		return wire.EncodeNull(m.addr), nil
	}

	reply := m.pending
	m.pending = nil
	if reply == nil {
		reply = wire.EncodeNull(m.addr)
	}
	if m.corruptReads > 0 {
		m.corruptReads--
		reply = append([]byte(nil), reply...)
		reply[len(reply)-1] ^= 0x01
	}
	if len(reply) > maxLen {
		reply = reply[:maxLen]
	}
	return reply, nil
}

// handle dispatches one request and returns the raw reply, nil for
// commands that have none. Called with the lock held.
func (m *Monitor) handle(frame *wire.Frame) []byte {
	switch frame.Command {
	case wire.OpGetVCPRequest:
		if len(frame.Body) != 1 {
			return nil
		}
		return m.getVCPReply(vcp.Code(frame.Body[0]))
	case wire.OpSetVCP:
		if len(frame.Body) == 3 {
			m.setVCP(vcp.Code(frame.Body[0]), uint16(frame.Body[1])<<8|uint16(frame.Body[2]))
		}
		return nil
	case wire.OpCapabilitiesRequest:
		if len(frame.Body) != 2 {
			return nil
		}
		return m.capabilitiesReply(int(frame.Body[0])<<8 | int(frame.Body[1]))
	case wire.OpSaveSettings:
		m.saves++
		return nil
	default:
		return nil
	}
}

func (m *Monitor) getVCPReply(code vcp.Code) []byte {
	body := make([]byte, 7)
	body[1] = uint8(code)

	switch code {
	case vcp.CodeNewControlValue:
		// 0x02 while user changes wait, 0x01 once drained.
		body[2] = 0x01
		if len(m.changed) > 0 {
			body[6] = 0x02
		} else {
			body[6] = 0x01
		}
	case vcp.CodeActiveControl:
		// Reading active control pops the oldest queued change.
		body[2] = 0x01
		if len(m.changed) > 0 {
			body[6] = uint8(m.changed[0])
			m.changed = m.changed[1:]
		}
	default:
		f, ok := m.features[code]
		if !ok {
			body[0] = 0x01 // unsupported
			break
		}
		body[2] = uint8(f.kind)
		body[3] = uint8(f.maximum >> 8)
		body[4] = uint8(f.maximum)
		body[5] = uint8(f.current >> 8)
		body[6] = uint8(f.current)
	}

	reply, err := wire.EncodeReply(m.addr, wire.OpGetVCPReply, body)
	if err != nil {
		return nil
	}
	return reply
}

// setVCP applies a host write. Unknown features and rejected values are
// dropped silently, as real monitors do: Set has no reply channel.
func (m *Monitor) setVCP(code vcp.Code, value uint16) {
	f, ok := m.features[code]
	if !ok || !f.accepts(value) {
		return
	}
	f.current = value
}

func (m *Monitor) capabilitiesReply(offset int) []byte {
	var data string
	if offset < len(m.caps) {
		end := offset + fragmentDataSize
		if end > len(m.caps) {
			end = len(m.caps)
		}
		data = m.caps[offset:end]
	}
	body := append([]byte{uint8(offset >> 8), uint8(offset)}, data...)
	reply, err := wire.EncodeReply(m.addr, wire.OpCapabilitiesReply, body)
	if err != nil {
		return nil
	}
	return reply
}
