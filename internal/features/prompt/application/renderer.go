package application

import (
	"sync"

	"advanced-prompt/internal/features/prompt/domain"
)

// RowDelta describes one render pass: how many row slots were appended or
// trimmed, and the descriptors of every row after the pass.
type RowDelta struct {
	Added      int          `json:"added"`
	Removed    int          `json:"removed"`
	Rows       []domain.Row `json:"rows"`
	TokenCount int          `json:"token_count"`
}

// RowRenderer draws rows. Gesture wiring stays on the renderer side; the
// editor only hands it declarative row descriptors.
type RowRenderer interface {
	Render(delta RowDelta)
}

// SnapshotRenderer keeps the most recent delta for hosts that poll.
type SnapshotRenderer struct {
	mu     sync.RWMutex
	last   RowDelta
	passes int
}

func (r *SnapshotRenderer) Render(delta RowDelta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = delta
	r.passes++
}

// Last returns the latest delta and the number of render passes so far.
func (r *SnapshotRenderer) Last() (RowDelta, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.passes
}
