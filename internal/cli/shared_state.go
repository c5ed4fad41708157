package cli

import (
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/reconcile"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Original is the snapshot as last loaded; Edited is the working copy
	// the grid and row forms write into. Both are nil until the first load
	// succeeds.
	Original *domain.Snapshot
	Edited   *domain.Snapshot

	// Terminal dimensions
	Width  int
	Height int
}

// SetSnapshot replaces both snapshots, discarding pending edits.
func (s *SharedState) SetSnapshot(snap *domain.Snapshot) {
	s.Original = snap
	s.Edited = snap.Clone()
}

// PendingChanges lists the edits a save would write.
func (s *SharedState) PendingChanges() []reconcile.Change {
	if s.Original == nil || s.Edited == nil {
		return nil
	}
	changes, err := reconcile.Diff(s.Original, s.Edited, domain.WatchedFields())
	if err != nil {
		return nil
	}
	return changes
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and
// status bar (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 4
	if h < 1 {
		return 1
	}
	return h
}
