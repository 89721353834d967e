package history

import (
	"errors"
	"fmt"
	"sync"
)

// Common errors for log operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxSteps bounds a log when no explicit limit is configured.
const DefaultMaxSteps = 250

// State describes where the cursor sits within a log.
type State int

const (
	// StateAtTip means the cursor is at the most recent edit; nothing to redo.
	StateAtTip State = iota
	// StateMidHistory means some steps are undone but more remain.
	StateMidHistory
	// StateFullyUndone means every step is undone; nothing left to undo.
	StateFullyUndone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAtTip:
		return "at-tip"
	case StateMidHistory:
		return "mid-history"
	case StateFullyUndone:
		return "fully-undone"
	default:
		return "unknown"
	}
}

// ReplayResult reports the outcome of an undo or redo request.
// Replay failures are carried here rather than propagated; no log operation
// panics or returns the action's error directly.
type ReplayResult struct {
	// Applied is true if a replay action was invoked.
	Applied bool

	// Description is the label of the step that was replayed.
	Description string

	// Err is the action's failure, if any. The step is still consumed:
	// the cursor has already moved past it and it will not be retried.
	Err error
}

// Log is an ordered sequence of steps plus a cursor counting how many steps
// back from the tip the session currently sits.
//
// Invariant: 0 <= offset <= len(steps). offset == 0 means at the tip,
// offset == len(steps) means fully unwound.
type Log struct {
	mu       sync.Mutex
	steps    []*Step
	offset   int
	maxSteps int
}

// NewLog creates a log bounded to maxSteps entries.
func NewLog(maxSteps int) *Log {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Log{maxSteps: maxSteps}
}

// Record appends a step at the tip.
//
// If the cursor is inside history, the undone steps are first re-appended in
// most-recent-first order with their undo/redo roles swapped. Going forward,
// undo first unwinds the new branch and then replays the undone region in
// reverse, so the old branch stays reachable.
func (l *Log) Record(step *Step) {
	if step == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.offset > 0 {
		n := len(l.steps)
		for i := 1; i <= l.offset; i++ {
			l.steps = append(l.steps, l.steps[n-i].swapped())
		}
		l.offset = 0
	}

	l.steps = append(l.steps, step)

	if len(l.steps) > l.maxSteps {
		excess := len(l.steps) - l.maxSteps
		l.steps = l.steps[excess:]
	}
}

// Undo replays the most recent step that has an undo action.
//
// The cursor advances for every step examined, including steps skipped
// because they carry no undo action. A failing action is reported in the
// result but stays consumed. Returns ErrNothingToUndo if the log is already
// fully unwound.
func (l *Log) Undo() (ReplayResult, error) {
	l.mu.Lock()
	if l.offset >= len(l.steps) {
		l.mu.Unlock()
		return ReplayResult{}, ErrNothingToUndo
	}

	var step *Step
	for l.offset < len(l.steps) {
		cand := l.steps[len(l.steps)-1-l.offset]
		l.offset++
		if cand.undo != nil {
			step = cand
			break
		}
	}
	l.mu.Unlock()

	if step == nil {
		// Exhausted the log without finding a usable undo; cursor now
		// sits at len(steps).
		return ReplayResult{}, nil
	}

	return ReplayResult{
		Applied:     true,
		Description: step.description,
		Err:         invoke(step.undo),
	}, nil
}

// Redo replays the most recently undone step that has a redo action.
//
// Mirror of Undo: the cursor retreats for every step examined. Returns
// ErrNothingToRedo if the cursor is already at the tip.
func (l *Log) Redo() (ReplayResult, error) {
	l.mu.Lock()
	if l.offset <= 0 {
		l.mu.Unlock()
		return ReplayResult{}, ErrNothingToRedo
	}

	var step *Step
	for l.offset > 0 {
		cand := l.steps[len(l.steps)-l.offset]
		l.offset--
		if cand.redo != nil {
			step = cand
			break
		}
	}
	l.mu.Unlock()

	if step == nil {
		return ReplayResult{}, nil
	}

	return ReplayResult{
		Applied:     true,
		Description: step.description,
		Err:         invoke(step.redo),
	}, nil
}

// invoke runs a replay action, converting a panic into an error so no
// failure escapes the log.
func invoke(a Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("replay panicked: %v", r)
		}
	}()
	return a()
}

// CanUndo returns true if at least one step remains to undo.
func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset < len(l.steps)
}

// CanRedo returns true if at least one step has been undone.
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset > 0
}

// Len returns the number of recorded steps.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.steps)
}

// Offset returns the cursor position: steps back from the tip.
func (l *Log) Offset() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset
}

// State returns where the cursor sits within the log.
func (l *Log) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.offset == 0:
		return StateAtTip
	case l.offset >= len(l.steps):
		return StateFullyUndone
	default:
		return StateMidHistory
	}
}

// PeekUndo returns info about the step the next undo would examine first.
func (l *Log) PeekUndo() (StepInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.offset >= len(l.steps) {
		return StepInfo{}, false
	}
	return l.steps[len(l.steps)-1-l.offset].info(), true
}

// PeekRedo returns info about the step the next redo would examine first.
func (l *Log) PeekRedo() (StepInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.offset <= 0 {
		return StepInfo{}, false
	}
	return l.steps[len(l.steps)-l.offset].info(), true
}

// Infos returns read-only info for every step, oldest first.
func (l *Log) Infos() []StepInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]StepInfo, len(l.steps))
	for i, s := range l.steps {
		out[i] = s.info()
	}
	return out
}

// Clear removes all steps and resets the cursor.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = nil
	l.offset = 0
}

// SetMaxSteps changes the step bound, trimming oldest entries if needed.
func (l *Log) SetMaxSteps(max int) {
	if max <= 0 {
		max = DefaultMaxSteps
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maxSteps = max
	if len(l.steps) > max {
		excess := len(l.steps) - max
		l.steps = l.steps[excess:]
		if l.offset > len(l.steps) {
			l.offset = len(l.steps)
		}
	}
}

// MaxSteps returns the current step bound.
func (l *Log) MaxSteps() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxSteps
}
