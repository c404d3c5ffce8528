package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ddc-protocol/ddc-go/pkg/mccs"
	"github.com/ddc-protocol/ddc-go/pkg/protocol"
	"github.com/ddc-protocol/ddc-go/pkg/transport"
	"github.com/ddc-protocol/ddc-go/pkg/vcp"
)

// Monitor is a high-level handle on one display. It owns a protocol
// session and caches the capability tree and per-feature maximums across
// calls.
//
// All methods are safe for concurrent use; the underlying session
// serializes the actual exchanges.
type Monitor struct {
	conn *protocol.Conn

	mu       sync.Mutex
	caps     *mccs.Capabilities
	maximums map[vcp.Code]uint16
}

// New opens a monitor handle over the given transport.
func New(t transport.Transport, cfg protocol.Config) *Monitor {
	return FromConn(protocol.NewConn(t, cfg))
}

// FromConn wraps an existing protocol session.
func FromConn(conn *protocol.Conn) *Monitor {
	return &Monitor{
		conn:     conn,
		maximums: make(map[vcp.Code]uint16),
	}
}

// Conn returns the underlying protocol session.
func (m *Monitor) Conn() *protocol.Conn {
	return m.conn
}

// Capabilities returns the monitor's capability tree, fetching and parsing
// it on first use. The tree is cached for the life of the handle; a
// monitor's capabilities do not change while it is plugged in.
func (m *Monitor) Capabilities(ctx context.Context) (*mccs.Capabilities, error) {
	m.mu.Lock()
	cached := m.caps
	m.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	caps, err := m.conn.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.caps = caps
	m.mu.Unlock()
	return caps, nil
}

// cachedCaps returns the capability tree if one was already fetched, nil
// otherwise. Get and Set never force a capability fetch; validation is
// best effort against what is known.
func (m *Monitor) cachedCaps() *mccs.Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps
}

// Get reads the current value of a feature. When the capability tree has
// been fetched it is used to validate discrete replies.
func (m *Monitor) Get(ctx context.Context, code vcp.Code) (vcp.Value, error) {
	var caps vcp.CapabilitySource
	if c := m.cachedCaps(); c != nil {
		caps = c
	}
	value, err := m.conn.GetVCP(ctx, code, caps)
	if err != nil {
		return vcp.Value{}, err
	}
	if value.Kind() == vcp.KindContinuous && value.Maximum() > 0 {
		m.mu.Lock()
		m.maximums[code] = value.Maximum()
		m.mu.Unlock()
	}
	return value, nil
}

// Set writes a new value for a feature, validating it against the cached
// capability tree when one exists.
func (m *Monitor) Set(ctx context.Context, code vcp.Code, value vcp.Value) error {
	if c := m.cachedCaps(); c != nil {
		if err := value.ValidateAgainst(code, c); err != nil {
			return err
		}
	}
	return m.conn.SetVCP(ctx, code, value)
}

// SaveSettings asks the monitor to persist its current settings.
func (m *Monitor) SaveSettings(ctx context.Context) error {
	return m.conn.SaveSettings(ctx)
}

// Luminance returns the brightness as a fraction of the panel's range.
func (m *Monitor) Luminance(ctx context.Context) (float64, error) {
	return m.fraction(ctx, vcp.CodeLuminance)
}

// SetLuminance sets the brightness as a fraction of the panel's range.
func (m *Monitor) SetLuminance(ctx context.Context, f float64) error {
	return m.setFraction(ctx, vcp.CodeLuminance, f)
}

// Contrast returns the contrast as a fraction of the panel's range.
func (m *Monitor) Contrast(ctx context.Context) (float64, error) {
	return m.fraction(ctx, vcp.CodeContrast)
}

// SetContrast sets the contrast as a fraction of the panel's range.
func (m *Monitor) SetContrast(ctx context.Context, f float64) error {
	return m.setFraction(ctx, vcp.CodeContrast, f)
}

// InputSource returns the selected input source code.
func (m *Monitor) InputSource(ctx context.Context) (uint16, error) {
	value, err := m.Get(ctx, vcp.CodeInputSelect)
	if err != nil {
		return 0, err
	}
	return value.Current(), nil
}

// SetInputSource selects an input source by code.
func (m *Monitor) SetInputSource(ctx context.Context, source uint16) error {
	return m.Set(ctx, vcp.CodeInputSelect, vcp.Discrete(source))
}

// OSDLanguage returns the on-screen display language code.
func (m *Monitor) OSDLanguage(ctx context.Context) (uint16, error) {
	value, err := m.Get(ctx, vcp.CodeOSDLanguage)
	if err != nil {
		return 0, err
	}
	return value.Current(), nil
}

// SetOSDLanguage selects the on-screen display language by code.
func (m *Monitor) SetOSDLanguage(ctx context.Context, language uint16) error {
	return m.Set(ctx, vcp.CodeOSDLanguage, vcp.Discrete(language))
}

// fraction reads a continuous feature and maps it onto 0..1.
func (m *Monitor) fraction(ctx context.Context, code vcp.Code) (float64, error) {
	value, err := m.Get(ctx, code)
	if err != nil {
		return 0, err
	}
	if value.Kind() != vcp.KindContinuous {
		return 0, fmt.Errorf("%w: feature %s is not continuous", vcp.ErrMalformedReply, code)
	}
	return value.Fraction(), nil
}

// setFraction scales a 0..1 fraction onto the feature's range. The maximum
// comes from the cache when a prior Get filled it, otherwise one Get is
// issued first: the monitor owns the range and it cannot be guessed.
func (m *Monitor) setFraction(ctx context.Context, code vcp.Code, f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("%w: fraction %v outside 0..1", vcp.ErrValueOutOfRange, f)
	}

	m.mu.Lock()
	maximum, ok := m.maximums[code]
	m.mu.Unlock()
	if !ok {
		if _, err := m.Get(ctx, code); err != nil {
			return err
		}
		m.mu.Lock()
		maximum, ok = m.maximums[code]
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: feature %s reports no maximum", vcp.ErrMalformedReply, code)
		}
	}

	scaled := uint16(math.Round(f * float64(maximum)))
	value, err := vcp.Continuous(scaled, maximum)
	if err != nil {
		return err
	}
	return m.Set(ctx, code, value)
}
