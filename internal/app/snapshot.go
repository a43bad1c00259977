package app

import (
	"sync/atomic"
	"time"

	"github.com/hylla/nametag/internal/domain"
)

// Snapshot is the fully built result of one pipeline run.
type Snapshot struct {
	ID              string
	CompetitionID   string
	CompetitionName string
	ShortName       string
	BuiltAt         time.Time
	Layout          domain.Layout
	PadMode         domain.PadMode
	Competitors     []domain.Competitor
	Pages           []domain.Page
	Rounds          []RoundSlot
	Diagnostics     []WarningSummary
}

// WarningCount sums all diagnostics.
func (s Snapshot) WarningCount() int {
	total := 0
	for _, w := range s.Diagnostics {
		total += w.Count
	}
	return total
}

// Competitor looks up a competitor by roster index.
func (s Snapshot) Competitor(index int) (domain.Competitor, error) {
	if index < 0 || index >= len(s.Competitors) {
		return domain.Competitor{}, ErrNotFound
	}
	return s.Competitors[index], nil
}

// Page looks up a page by 1-based number.
func (s Snapshot) Page(number int) (domain.Page, error) {
	if number < 1 || number > len(s.Pages) {
		return domain.Page{}, ErrNotFound
	}
	return s.Pages[number-1], nil
}

// SnapshotHolder publishes complete snapshots to concurrent readers.
// Readers never observe a partially built snapshot.
type SnapshotHolder struct {
	current atomic.Pointer[Snapshot]
}

// Publish replaces the current snapshot.
func (h *SnapshotHolder) Publish(s Snapshot) {
	h.current.Store(&s)
}

// Current returns the latest snapshot, if any.
func (h *SnapshotHolder) Current() (Snapshot, bool) {
	s := h.current.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}
