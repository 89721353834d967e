package history

import (
	"testing"

	"github.com/spectrail/spectrail/internal/engine/peaks"
)

func newScopedManager(t *testing.T) (*Manager, *peaks.Set) {
	t.Helper()
	m := NewManager(ManagerConfig{})
	m.SetContext(NewSessionKey("f1", []int{1}))
	return m, peaks.NewSet()
}

func TestScopeNoNetChangeRecordsNothing(t *testing.T) {
	m, set := newScopedManager(t)
	p := peaks.New(661.7, 2.5, 10000)
	set.Add(p)

	scope := m.BeginPeakChange(set)
	set.Remove(p.ID)
	set.Add(p)
	scope.End()

	if m.CanUndo() {
		t.Error("no-net-change scope recorded a step")
	}
}

func TestScopeAddPeakRecordsSingleStep(t *testing.T) {
	m, set := newScopedManager(t)

	scope := m.BeginPeakChange(set)
	set.Add(peaks.New(661.7, 2.5, 10000))
	scope.End()

	if !m.CanUndo() {
		t.Fatal("scope with a net change recorded nothing")
	}
	if got := m.ActiveLog().Len(); got != 1 {
		t.Fatalf("log length = %d, want single aggregate step", got)
	}

	info, _ := m.ActiveLog().PeekUndo()
	if info.Description != "add peak" {
		t.Errorf("description = %q, want %q", info.Description, "add peak")
	}

	m.Undo()
	if set.Len() != 0 {
		t.Errorf("undo left %d peaks, want before-snapshot restored", set.Len())
	}

	m.Redo()
	if set.Len() != 1 {
		t.Errorf("redo left %d peaks, want after-snapshot restored", set.Len())
	}
}

func TestNestedScopesSynthesizeOnce(t *testing.T) {
	m, set := newScopedManager(t)

	outer := m.BeginPeakChange(set)
	set.Add(peaks.New(661.7, 2.5, 10000))

	inner := m.BeginPeakChange(set)
	set.Add(peaks.New(1460.8, 3.1, 4200))
	inner.End()

	if m.CanUndo() {
		t.Error("inner scope exit synthesized a step")
	}

	outer.End()
	if got := m.ActiveLog().Len(); got != 1 {
		t.Fatalf("log length = %d, want one aggregate step", got)
	}

	// The aggregate undo restores the state before the outermost entry.
	m.Undo()
	if set.Len() != 0 {
		t.Errorf("undo left %d peaks, want 0", set.Len())
	}
}

func TestScopeDescriptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*peaks.Set)
		want   string
	}{
		{
			name:   "add one",
			mutate: func(s *peaks.Set) { s.Add(peaks.New(100, 1, 10)) },
			want:   "add peak",
		},
		{
			name: "add several",
			mutate: func(s *peaks.Set) {
				s.Add(peaks.New(100, 1, 10))
				s.Add(peaks.New(200, 1, 10))
			},
			want: "add peaks",
		},
		{
			name:   "remove one",
			mutate: func(s *peaks.Set) { s.Remove(s.All()[0].ID) },
			want:   "remove peak",
		},
		{
			name: "remove several",
			mutate: func(s *peaks.Set) {
				for _, p := range s.All() {
					s.Remove(p.ID)
				}
			},
			want: "remove peaks",
		},
		{
			name: "edit in place",
			mutate: func(s *peaks.Set) {
				p := s.All()[0]
				p.Amplitude *= 2
				s.Update(p)
			},
			want: "edit peak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, set := newScopedManager(t)
			set.Add(peaks.New(661.7, 2.5, 10000))
			set.Add(peaks.New(1173.2, 2.8, 8000))

			scope := m.BeginPeakChange(set)
			tt.mutate(set)
			scope.End()

			info, ok := m.ActiveLog().PeekUndo()
			if !ok {
				t.Fatal("no step recorded")
			}
			if info.Description != tt.want {
				t.Errorf("description = %q, want %q", info.Description, tt.want)
			}
		})
	}
}

func TestScopeEndIdempotent(t *testing.T) {
	m, set := newScopedManager(t)

	scope := m.BeginPeakChange(set)
	set.Add(peaks.New(661.7, 2.5, 10000))
	scope.End()
	scope.End()

	if got := m.ActiveLog().Len(); got != 1 {
		t.Errorf("log length = %d after double End, want 1", got)
	}
	if m.InChange() {
		t.Error("scope depth leaked")
	}
}

func TestScopeSuppressedRecordsNothing(t *testing.T) {
	m, set := newScopedManager(t)

	m.WithoutRecording(func() {
		scope := m.BeginPeakChange(set)
		set.Add(peaks.New(661.7, 2.5, 10000))
		scope.End()
	})

	if m.CanUndo() {
		t.Error("suppressed scope recorded a step")
	}
}

func TestScopeOpenAcrossContextSwitchDiscarded(t *testing.T) {
	logger := &captureLogger{}
	m := NewManager(ManagerConfig{Logger: logger})
	m.SetContext(NewSessionKey("f1", []int{1}))
	set := peaks.NewSet()

	scope := m.BeginPeakChange(set)
	set.Add(peaks.New(661.7, 2.5, 10000))

	// The scope belongs to f1's session; its step must not land in f2's.
	m.SetContext(NewSessionKey("f2", []int{1}))
	if m.InChange() {
		t.Error("change scope survived a context switch")
	}
	scope.End()

	if m.CanUndo() {
		t.Error("discarded scope recorded into the new session")
	}
	m.SetContext(NewSessionKey("f1", []int{1}))
	if m.CanUndo() {
		t.Error("discarded scope recorded into the old session")
	}
	if len(logger.warns) == 0 {
		t.Error("discarded scope produced no diagnostic")
	}
}

func TestScopeUndoRedoRoundTripRestoresContents(t *testing.T) {
	m, set := newScopedManager(t)
	original := peaks.New(661.7, 2.5, 10000)
	set.Add(original)

	scope := m.BeginPeakChange(set)
	edited := original
	edited.Label = "Cs137"
	set.Update(edited)
	scope.End()

	m.Undo()
	got, ok := set.Get(original.ID)
	if !ok || got.Label != "" {
		t.Errorf("undo restored %+v, want original label cleared", got)
	}

	m.Redo()
	got, _ = set.Get(original.ID)
	if got.Label != "Cs137" {
		t.Errorf("redo restored %+v, want edited label", got)
	}
}
