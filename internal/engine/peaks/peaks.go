// Package peaks provides the fitted-peak model that analysis tools edit
// and the history engine snapshots.
package peaks

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrNilSnapshot indicates a restore was attempted with no snapshot.
var ErrNilSnapshot = errors.New("nil peak snapshot")

// Peak is a single fitted photopeak.
type Peak struct {
	// ID is a stable identity token; it survives edits to the peak.
	ID string

	// Energy is the fitted centroid in keV.
	Energy float64

	// FWHM is the full width at half maximum in keV.
	FWHM float64

	// Amplitude is the fitted peak area in counts.
	Amplitude float64

	// Label is an optional user or nuclide-ID annotation.
	Label string
}

// New creates a peak with a fresh identity token.
func New(energy, fwhm, amplitude float64) Peak {
	return Peak{
		ID:        uuid.NewString(),
		Energy:    energy,
		FWHM:      fwhm,
		Amplitude: amplitude,
	}
}

// Equal reports whether two peaks are identical, identity included.
func (p Peak) Equal(o Peak) bool {
	return p == o
}

// Set is an ordered collection of peaks, kept sorted by centroid energy.
type Set struct {
	mu    sync.RWMutex
	peaks []Peak
}

// NewSet creates an empty peak set.
func NewSet() *Set {
	return &Set{}
}

// Add inserts a peak, keeping the set sorted by energy.
func (s *Set) Add(p Peak) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(p)
}

func (s *Set) insertLocked(p Peak) {
	i := sort.Search(len(s.peaks), func(i int) bool {
		return s.peaks[i].Energy >= p.Energy
	})
	s.peaks = append(s.peaks, Peak{})
	copy(s.peaks[i+1:], s.peaks[i:])
	s.peaks[i] = p
}

// Remove deletes the peak with the given ID.
// Returns false if no such peak exists.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.peaks {
		if p.ID == id {
			s.peaks = append(s.peaks[:i], s.peaks[i+1:]...)
			return true
		}
	}
	return false
}

// Update replaces the peak with the same ID, re-sorting if the centroid moved.
// Returns false if no such peak exists.
func (s *Set) Update(p Peak) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, old := range s.peaks {
		if old.ID == p.ID {
			s.peaks = append(s.peaks[:i], s.peaks[i+1:]...)
			s.insertLocked(p)
			return true
		}
	}
	return false
}

// Get returns the peak with the given ID.
func (s *Set) Get(id string) (Peak, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.peaks {
		if p.ID == id {
			return p, true
		}
	}
	return Peak{}, false
}

// Len returns the number of peaks.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peaks)
}

// All returns a copy of the peaks in energy order.
func (s *Set) All() []Peak {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Peak, len(s.peaks))
	copy(out, s.peaks)
	return out
}

// Clear removes all peaks.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peaks = nil
}

// Snapshot captures the current contents as a detached copy.
func (s *Set) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{peaks: make([]Peak, len(s.peaks))}
	copy(snap.peaks, s.peaks)
	return snap
}

// Restore replaces the set contents with the snapshot's.
func (s *Set) Restore(snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.peaks = make([]Peak, len(snap.peaks))
	copy(s.peaks, snap.peaks)
	return nil
}

// Snapshot is an immutable copy of a Set's contents.
type Snapshot struct {
	peaks []Peak
}

// Len returns the number of peaks in the snapshot.
func (sn *Snapshot) Len() int {
	return len(sn.peaks)
}

// Peaks returns a copy of the snapshot contents.
func (sn *Snapshot) Peaks() []Peak {
	out := make([]Peak, len(sn.peaks))
	copy(out, sn.peaks)
	return out
}

// Equal reports whether two snapshots hold identical peaks in the same order.
func (sn *Snapshot) Equal(other *Snapshot) bool {
	if other == nil || len(sn.peaks) != len(other.peaks) {
		return false
	}
	for i, p := range sn.peaks {
		if !p.Equal(other.peaks[i]) {
			return false
		}
	}
	return true
}
