// Package history provides undo/redo functionality for spectrum analysis
// sessions.
//
// Each (spectrum file, sample selection) pair gets its own step log; the
// Manager tracks which log is live and parks the others for revival when the
// user switches back. Key concepts:
//
// # Steps
//
// A Step is one reversible unit of work: a pair of zero-argument replay
// actions plus a label. At least one action must be present.
//
// # Step Log
//
// The Log keeps steps in recording order with a cursor counting how far back
// from the tip the session sits. Undoing walks the cursor toward the oldest
// step, redoing walks it back toward the tip. Recording a new step while the
// cursor is inside history re-appends the undone steps with their roles
// swapped before appending the new one, so no history is ever lost to a
// branch; it just moves further away:
//
//	log.Record(step)   // branch rewrite happens here when mid-history
//	log.Undo()
//	log.Redo()
//
// # Grouped changes
//
// Fine-grained peak edits made during one user gesture collapse into a
// single step via a reentrant scope:
//
//	scope := mgr.BeginPeakChange(set)
//	defer scope.End()
//	// ... many individual peak mutations ...
//
// Only the outermost End compares the before/after snapshots; if they differ
// a single step restoring either side is recorded.
//
// # Suppression
//
// Bulk-loading code paths that must not generate undo history wrap their
// work in a suppress scope:
//
//	mgr.WithoutRecording(func() { /* programmatic setup */ })
package history
