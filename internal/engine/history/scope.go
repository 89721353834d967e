package history

import (
	"github.com/spectrail/spectrail/internal/engine/peaks"
)

// pendingChange holds the outermost scope's before-snapshot until the
// matching End.
type pendingChange struct {
	set    *peaks.Set
	before *peaks.Snapshot
}

// ChangeScope collapses a batch of fine-grained peak mutations into a single
// step. Usage:
//
//	scope := mgr.BeginPeakChange(set)
//	defer scope.End()
//	// ... many individual peak edits ...
//
// Nested scopes are cheap no-ops; only the outermost boundary snapshots and
// synthesizes a step, and only when the before/after snapshots differ.
type ChangeScope struct {
	m      *Manager
	active bool
}

// BeginPeakChange opens a grouped-change scope over the given peak set.
// The first (outermost) entry captures a before-snapshot.
func (m *Manager) BeginPeakChange(set *peaks.Set) *ChangeScope {
	m.scopeDepth++
	if m.scopeDepth == 1 {
		m.scopeChange = &pendingChange{set: set}
		if set != nil {
			m.scopeChange.before = set.Snapshot()
		}
	}
	return &ChangeScope{m: m, active: true}
}

// End closes the scope. On the outermost exit the before/after snapshots are
// compared and, if they differ, a single step restoring either side is
// recorded. Safe to call multiple times; only the first call has effect.
func (s *ChangeScope) End() {
	if !s.active {
		return
	}
	s.active = false
	s.m.endChange()
}

func (m *Manager) endChange() {
	if m.scopeDepth == 0 {
		return
	}
	m.scopeDepth--
	if m.scopeDepth > 0 {
		return
	}

	pending := m.scopeChange
	m.scopeChange = nil
	if pending == nil || pending.set == nil || pending.before == nil {
		return
	}

	after := pending.set.Snapshot()
	if after.Equal(pending.before) {
		return
	}

	set, before := pending.set, pending.before
	m.Record(
		func() error { return set.Restore(before) },
		func() error { return set.Restore(after) },
		changeDescription(after.Len()-before.Len()),
	)
}

// changeDescription derives a step label from the net peak-count change.
func changeDescription(delta int) string {
	switch {
	case delta > 1:
		return "add peaks"
	case delta == 1:
		return "add peak"
	case delta == -1:
		return "remove peak"
	case delta < -1:
		return "remove peaks"
	default:
		return "edit peak"
	}
}

// InChange returns true while a grouped-change scope is open.
func (m *Manager) InChange() bool {
	return m.scopeDepth > 0
}
