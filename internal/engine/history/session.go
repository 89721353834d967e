package history

import (
	"container/list"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SessionKey identifies the (spectrum file, sample selection) pair a log
// belongs to. Files are compared by their registry-issued identity token,
// never by content, so undo history does not keep a file alive.
type SessionKey struct {
	token   string
	samples []int
}

// NewSessionKey creates a key from a file token and sample numbers.
// Samples are normalized: sorted and deduplicated.
func NewSessionKey(token string, samples []int) SessionKey {
	norm := make([]int, 0, len(samples))
	seen := make(map[int]struct{}, len(samples))
	for _, n := range samples {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		norm = append(norm, n)
	}
	sort.Ints(norm)
	return SessionKey{token: token, samples: norm}
}

// Token returns the file identity token.
func (k SessionKey) Token() string {
	return k.token
}

// Samples returns a copy of the sample numbers, sorted.
func (k SessionKey) Samples() []int {
	out := make([]int, len(k.samples))
	copy(out, k.samples)
	return out
}

// IsEmpty returns true for a key with no file or no samples.
// An empty key means no log can be active.
func (k SessionKey) IsEmpty() bool {
	return k.token == "" || len(k.samples) == 0
}

// Equal compares by file token and then by sample set.
func (k SessionKey) Equal(o SessionKey) bool {
	if k.token != o.token || len(k.samples) != len(o.samples) {
		return false
	}
	for i, n := range k.samples {
		if o.samples[i] != n {
			return false
		}
	}
	return true
}

// String returns a stable textual form, e.g. "f91c…:1,2,5".
func (k SessionKey) String() string {
	var b strings.Builder
	b.WriteString(k.token)
	b.WriteByte(':')
	for i, n := range k.samples {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// StepKind classifies journal notifications.
type StepKind string

const (
	// StepRecorded marks a newly recorded step.
	StepRecorded StepKind = "record"
	// StepUndone marks a successful undo replay.
	StepUndone StepKind = "undo"
	// StepRedone marks a successful redo replay.
	StepRedone StepKind = "redo"
)

// StepObserver receives notifications about step activity.
// Used to feed the persisted edit journal; observers must not call back
// into the manager.
type StepObserver interface {
	StepLogged(key SessionKey, kind StepKind, description string, at time.Time)
}

// MessageSink receives user-visible warnings, e.g. replay failures.
type MessageSink interface {
	Warn(msg string, args ...any)
}

// Logger is the diagnostic surface the manager reports drops and
// bounds-checks to.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// nopLogger discards all diagnostics.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// DefaultMaxSessions bounds the parked-log table when unconfigured.
const DefaultMaxSessions = 16

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// MaxSteps bounds each session's log. Defaults to DefaultMaxSteps.
	MaxSteps int

	// MaxSessions bounds the parked-log table (LRU eviction).
	// Defaults to DefaultMaxSessions.
	MaxSessions int

	// Logger receives diagnostics. Optional.
	Logger Logger

	// Sink receives user-visible warnings. Falls back to Logger.
	Sink MessageSink

	// Observer receives step notifications. Optional.
	Observer StepObserver
}

// parkedLog is an entry in the parked-log side table.
type parkedLog struct {
	key SessionKey
	log *Log
}

// Manager owns the live step log and a bounded side table of parked logs,
// one per session key that has been active.
//
// All mutating operations are expected on the UI goroutine; the mutexes only
// make the query surface safe to read elsewhere. No operation blocks.
type Manager struct {
	// Live session
	live    *Log
	liveKey SessionKey

	// Parked logs: front of order is most recently parked
	parked map[string]*list.Element
	order  *list.List

	// Suppression and grouped-change state
	suppress    int
	scopeDepth  int
	scopeChange *pendingChange

	// Configuration
	maxSteps    int
	maxSessions int

	logger   Logger
	sink     MessageSink
	observer StepObserver
}

// NewManager creates a manager with no active session.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Sink == nil {
		cfg.Sink = cfg.Logger
	}

	return &Manager{
		parked:      make(map[string]*list.Element),
		order:       list.New(),
		maxSteps:    cfg.MaxSteps,
		maxSessions: cfg.MaxSessions,
		logger:      cfg.Logger,
		sink:        cfg.Sink,
		observer:    cfg.Observer,
	}
}

// Record records a reversible step against the live session.
//
// Silent no-op (diagnostic only) when recording is suppressed, when no
// session is active, or when both actions are nil.
func (m *Manager) Record(undo, redo Action, description string) {
	if m.suppress > 0 {
		m.logger.Debug("record %q dropped: recording suppressed", description)
		return
	}
	if m.live == nil {
		m.logger.Debug("record %q dropped: no active session", description)
		return
	}

	step, err := NewStep(undo, redo, description)
	if err != nil {
		m.logger.Warn("record %q dropped: %v", description, err)
		return
	}

	m.live.Record(step)
	m.notify(StepRecorded, description, step.timestamp)
}

// Undo replays the most recent undoable step of the live session.
// Replay failures are surfaced through the message sink; the failing step
// stays consumed and is not retried.
func (m *Manager) Undo() {
	if m.live == nil {
		m.logger.Debug("undo ignored: no active session")
		return
	}

	res, err := m.live.Undo()
	switch {
	case err != nil:
		m.logger.Debug("undo ignored: %v", err)
	case !res.Applied:
		m.logger.Debug("undo found no usable step")
	case res.Err != nil:
		m.sink.Warn("undo of %q failed: %v", res.Description, res.Err)
	default:
		m.notify(StepUndone, res.Description, time.Now())
	}
}

// Redo replays the most recently undone step of the live session.
func (m *Manager) Redo() {
	if m.live == nil {
		m.logger.Debug("redo ignored: no active session")
		return
	}

	res, err := m.live.Redo()
	switch {
	case err != nil:
		m.logger.Debug("redo ignored: %v", err)
	case !res.Applied:
		m.logger.Debug("redo found no usable step")
	case res.Err != nil:
		m.sink.Warn("redo of %q failed: %v", res.Description, res.Err)
	default:
		m.notify(StepRedone, res.Description, time.Now())
	}
}

// CanUndo returns true if a session is active and has a step to undo.
func (m *Manager) CanUndo() bool {
	return m.live != nil && m.live.CanUndo()
}

// CanRedo returns true if a session is active and has an undone step.
func (m *Manager) CanRedo() bool {
	return m.live != nil && m.live.CanRedo()
}

// ActiveKey returns the live session key and whether a session is active.
func (m *Manager) ActiveKey() (SessionKey, bool) {
	return m.liveKey, m.live != nil
}

// ActiveLog returns the live log for inspection, or nil.
func (m *Manager) ActiveLog() *Log {
	return m.live
}

// SetContext switches the live session to the given key.
//
// A no-op when the key matches the current one. Otherwise the live log is
// parked for later revival, and a log matching the new key is revived from
// the side table or created fresh. An empty key leaves no session active and
// Record becomes a silent no-op.
func (m *Manager) SetContext(key SessionKey) {
	if key.Equal(m.liveKey) {
		return
	}

	// A change scope left open across a switch must not synthesize its
	// step into the new session.
	if m.scopeDepth > 0 {
		m.logger.Warn("history context switched with an open change scope; discarding it")
		m.scopeDepth = 0
		m.scopeChange = nil
	}

	// Take the target out of the side table before parking the outgoing
	// log, so parking can never evict the log being revived.
	revived := m.takeParked(key)

	if m.live != nil {
		m.park(m.liveKey, m.live)
	}
	m.live = nil
	m.liveKey = SessionKey{}

	if key.IsEmpty() {
		m.logger.Debug("history context cleared")
		return
	}

	if revived != nil {
		m.logger.Debug("revived history for %s (%d steps)", key, revived.Len())
		m.live = revived
	} else {
		m.live = NewLog(m.maxSteps)
	}
	m.liveKey = key
}

// park files a log under its key, evicting the least recently parked log
// when the table is over its bound.
func (m *Manager) park(key SessionKey, lg *Log) {
	id := key.String()
	if el, ok := m.parked[id]; ok {
		m.order.Remove(el)
	}
	m.parked[id] = m.order.PushFront(&parkedLog{key: key, log: lg})

	for m.order.Len() > m.maxSessions {
		oldest := m.order.Back()
		entry := oldest.Value.(*parkedLog)
		m.order.Remove(oldest)
		delete(m.parked, entry.key.String())
		m.logger.Debug("evicted parked history for %s", entry.key)
	}
}

// takeParked removes and returns the log for key, or nil.
func (m *Manager) takeParked(key SessionKey) *Log {
	el, ok := m.parked[key.String()]
	if !ok {
		return nil
	}
	m.order.Remove(el)
	delete(m.parked, key.String())
	return el.Value.(*parkedLog).log
}

// ParkedCount returns the number of parked session logs.
func (m *Manager) ParkedCount() int {
	return m.order.Len()
}

// SetMaxSteps applies a new per-session step bound to the live and parked
// logs. Used by config live reload.
func (m *Manager) SetMaxSteps(max int) {
	if max <= 0 {
		max = DefaultMaxSteps
	}
	m.maxSteps = max
	if m.live != nil {
		m.live.SetMaxSteps(max)
	}
	for el := m.order.Front(); el != nil; el = el.Next() {
		el.Value.(*parkedLog).log.SetMaxSteps(max)
	}
}

// SetMaxSessions applies a new parked-table bound, evicting as needed.
func (m *Manager) SetMaxSessions(max int) {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	m.maxSessions = max
	for m.order.Len() > m.maxSessions {
		oldest := m.order.Back()
		entry := oldest.Value.(*parkedLog)
		m.order.Remove(oldest)
		delete(m.parked, entry.key.String())
		m.logger.Debug("evicted parked history for %s", entry.key)
	}
}

// notify forwards a step event to the observer, if any.
func (m *Manager) notify(kind StepKind, description string, at time.Time) {
	if m.observer != nil {
		m.observer.StepLogged(m.liveKey, kind, description, at)
	}
}

// SuppressScope marks recording as suppressed until End is called.
// Reentrant: nested scopes keep suppression active until the outermost ends.
type SuppressScope struct {
	m      *Manager
	active bool
}

// SuppressScope starts a suppression scope.
// Call End() or use with defer to release it.
func (m *Manager) SuppressScope() *SuppressScope {
	m.suppress++
	return &SuppressScope{m: m, active: true}
}

// End releases the scope.
// Safe to call multiple times; only the first call has effect.
func (s *SuppressScope) End() {
	if s.active {
		s.active = false
		if s.m.suppress > 0 {
			s.m.suppress--
		}
	}
}

// IsSuppressed returns true while any suppression scope is open.
func (m *Manager) IsSuppressed() bool {
	return m.suppress > 0
}

// WithoutRecording runs fn with recording suppressed.
// Suppression is released on all exit paths, including panics.
func (m *Manager) WithoutRecording(fn func()) {
	s := m.SuppressScope()
	defer s.End()
	fn()
}
