package app

import "errors"

// Application errors.
var (
	// ErrNoForegroundSpectrum indicates no spectrum file is in the foreground.
	ErrNoForegroundSpectrum = errors.New("no foreground spectrum")

	// ErrJournalDisabled indicates the edit journal is not configured.
	ErrJournalDisabled = errors.New("edit journal disabled")

	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")
)
