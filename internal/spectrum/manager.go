package spectrum

import (
	"errors"
	"sync"

	"github.com/spectrail/spectrail/internal/event"
)

// Registry errors.
var (
	ErrFileNotFound   = errors.New("spectrum file not found")
	ErrUnknownSamples = errors.New("sample numbers not present in file")
)

// ForegroundChanged is published on the bus when the active
// (file, samples) pair changes.
type ForegroundChanged struct {
	// Token is the identity of the new foreground file; empty when no file
	// is in the foreground.
	Token string

	// Samples is the new foreground sample selection.
	Samples SampleSet
}

// FileOpened is published when a file is registered.
type FileOpened struct {
	Token string
	Name  string
}

// FileClosed is published when a file is released.
type FileClosed struct {
	Token string
}

// Manager is the spectrum-file registry and foreground-state owner.
//
// Foreground changes are published synchronously: every subscriber has run
// before SetForeground returns, so observers keyed on the foreground (the
// undo history manager in particular) always see the switch before any edit
// recorded against the new context.
type Manager struct {
	mu        sync.RWMutex
	files     map[string]*File // token -> file
	order     []string         // open order, for navigation
	fgToken   string
	fgSamples SampleSet
	bus       *event.Bus
}

// NewManager creates a registry publishing on the given bus.
// A nil bus disables notifications.
func NewManager(bus *event.Bus) *Manager {
	return &Manager{
		files: make(map[string]*File),
		bus:   bus,
	}
}

// Open registers a file and returns it.
func (m *Manager) Open(f *File) *File {
	m.mu.Lock()
	m.files[f.Token] = f
	m.order = append(m.order, f.Token)
	m.mu.Unlock()

	m.publish(event.TopicFileOpened, FileOpened{Token: f.Token, Name: f.Name})
	return f
}

// Close releases a file. If it was the foreground file, the foreground is
// cleared first so observers detach their state before the file goes away.
func (m *Manager) Close(token string) error {
	m.mu.RLock()
	_, exists := m.files[token]
	isForeground := m.fgToken == token
	m.mu.RUnlock()

	if !exists {
		return ErrFileNotFound
	}
	if isForeground {
		m.clearForeground()
	}

	m.mu.Lock()
	delete(m.files, token)
	for i, t := range m.order {
		if t == token {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.publish(event.TopicFileClosed, FileClosed{Token: token})
	return nil
}

// Get returns a file by token.
func (m *Manager) Get(token string) (*File, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[token]
	return f, ok
}

// All returns the open files in open order.
func (m *Manager) All() []*File {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*File, 0, len(m.order))
	for _, t := range m.order {
		if f, ok := m.files[t]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of open files.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// Foreground returns the active file token and sample selection.
// The token is empty when no file is in the foreground.
func (m *Manager) Foreground() (string, SampleSet) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fgToken, m.fgSamples
}

// SetForeground makes (token, samples) the active pair and notifies
// subscribers synchronously. A no-op if the pair is unchanged.
func (m *Manager) SetForeground(token string, samples SampleSet) error {
	m.mu.Lock()
	f, ok := m.files[token]
	if !ok {
		m.mu.Unlock()
		return ErrFileNotFound
	}
	for _, n := range samples {
		if !f.Samples.Contains(n) {
			m.mu.Unlock()
			return ErrUnknownSamples
		}
	}
	if m.fgToken == token && m.fgSamples.Equal(samples) {
		m.mu.Unlock()
		return nil
	}
	m.fgToken = token
	m.fgSamples = samples
	m.mu.Unlock()

	m.publish(event.TopicForegroundChanged, ForegroundChanged{Token: token, Samples: samples})
	return nil
}

// clearForeground drops the active pair and notifies subscribers.
func (m *Manager) clearForeground() {
	m.mu.Lock()
	if m.fgToken == "" {
		m.mu.Unlock()
		return
	}
	m.fgToken = ""
	m.fgSamples = nil
	m.mu.Unlock()

	m.publish(event.TopicForegroundChanged, ForegroundChanged{})
}

func (m *Manager) publish(topic event.Topic, ev any) {
	if m.bus != nil {
		m.bus.Publish(topic, ev)
	}
}
