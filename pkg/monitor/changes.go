package monitor

import (
	"context"

	"github.com/ddc-protocol/ddc-go/pkg/vcp"
)

// New-control-value states.
const (
	noChangesPending = 0x01
	changesPending   = 0x02
)

// maxQueuedChanges bounds one drain pass. A monitor that reports an
// endless stream of changes is misbehaving; the bound turns that into a
// finite answer instead of a hung poll.
const maxQueuedChanges = 64

// PendingChanges polls the monitor for settings changed at the physical
// controls since the last poll. It reads the new-control-value feature and,
// while changes are flagged, drains the changed feature codes from the
// active-control feature in the order the monitor queued them.
//
// An empty slice means nothing changed. Monitors without the two features
// report an unsupported-feature error on the first read.
func (m *Monitor) PendingChanges(ctx context.Context) ([]vcp.Code, error) {
	var changed []vcp.Code
	for len(changed) < maxQueuedChanges {
		flag, err := m.Get(ctx, vcp.CodeNewControlValue)
		if err != nil {
			return nil, err
		}
		if flag.Current() != changesPending {
			break
		}

		active, err := m.Get(ctx, vcp.CodeActiveControl)
		if err != nil {
			return nil, err
		}
		code := vcp.Code(active.Current())
		if code == vcp.CodePage {
			// Code zero means the queue emptied between the two reads.
			break
		}
		changed = append(changed, code)
	}
	return changed, nil
}
