package app

import (
	"errors"
	"fmt"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidCompetitionID  = errors.New("invalid competition id")
	ErrMalformedExport       = errors.New("malformed export")
	ErrUnknownCountry        = errors.New("unknown country")
	ErrMalformedTimestamp    = errors.New("malformed timestamp")
	ErrInvalidTimeZone       = errors.New("invalid time zone")
	ErrInvalidMissingCountry = errors.New("invalid missing country policy")
)

// Stage names one step of the generation pipeline.
type Stage string

// StageFetch and related constants name pipeline steps in execution order.
const (
	StageFetch       Stage = "fetch"
	StageHistory     Stage = "history"
	StageCountries   Stage = "countries"
	StageRoster      Stage = "roster"
	StageSchedule    Stage = "schedule"
	StageAssignments Stage = "assignments"
	StagePages       Stage = "pages"
)

// StageError reports which stage and input a fatal failure came from.
type StageError struct {
	Stage Stage
	Input string
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Input, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, input string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Input: input, Err: err}
}
