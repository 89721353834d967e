package history

import (
	"errors"
	"time"
)

// ErrEmptyStep indicates a step was constructed with neither action.
var ErrEmptyStep = errors.New("step has neither undo nor redo action")

// Action is a zero-argument replay action.
// Actions are free to mutate arbitrary application state; a non-nil error
// marks the replay as failed without crashing the caller.
type Action func() error

// Step is one reversible unit of work.
type Step struct {
	undo        Action
	redo        Action
	description string
	timestamp   time.Time
}

// NewStep creates a step from the given actions and label.
// At least one of undo/redo must be non-nil.
func NewStep(undo, redo Action, description string) (*Step, error) {
	if undo == nil && redo == nil {
		return nil, ErrEmptyStep
	}
	return &Step{
		undo:        undo,
		redo:        redo,
		description: description,
		timestamp:   time.Now(),
	}, nil
}

// Description returns the human-readable label.
func (s *Step) Description() string {
	return s.description
}

// Timestamp returns when the step was recorded.
// Diagnostic only; replay order never depends on it.
func (s *Step) Timestamp() time.Time {
	return s.timestamp
}

// CanUndo returns true if the step has an undo action.
func (s *Step) CanUndo() bool {
	return s.undo != nil
}

// CanRedo returns true if the step has a redo action.
func (s *Step) CanRedo() bool {
	return s.redo != nil
}

// swapped returns a copy with the undo and redo roles exchanged.
// Used by the branch rewrite when recording mid-history.
func (s *Step) swapped() *Step {
	return &Step{
		undo:        s.redo,
		redo:        s.undo,
		description: s.description,
		timestamp:   time.Now(),
	}
}

// StepInfo provides read-only info about a recorded step.
// Used for displaying undo/redo history to users.
type StepInfo struct {
	Description string
	Timestamp   time.Time
	CanUndo     bool
	CanRedo     bool
}

func (s *Step) info() StepInfo {
	return StepInfo{
		Description: s.description,
		Timestamp:   s.timestamp,
		CanUndo:     s.undo != nil,
		CanRedo:     s.redo != nil,
	}
}
