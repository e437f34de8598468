package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rubrical-studios/shipver/internal/runner"
)

// Common errors
var (
	ErrInvalidVersionFormat    = errors.New("invalid version format")
	ErrMissingPersistedVersion = errors.New("no stored version and none supplied")
	ErrPatternNotFound         = errors.New("version pattern not found")
	ErrFileNotFound            = errors.New("file not found")
	ErrCommandFailed           = errors.New("command failed")
)

// PatchError wraps an artifact patching failure with the file it concerns
type PatchError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Artifact, e.Path, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// StepError is returned when an external command of a release step fails.
// It carries the captured outcome so the operator can resume by hand.
type StepError struct {
	Step    Step
	Outcome runner.Outcome
}

func (e *StepError) Error() string {
	detail := strings.TrimSpace(e.Outcome.Stderr)
	if detail == "" && e.Outcome.Err != nil {
		detail = e.Outcome.Err.Error()
	}
	if detail == "" {
		detail = fmt.Sprintf("exit status %d", e.Outcome.ExitCode)
	}
	return fmt.Sprintf("%s: %v: %s", e.Step, ErrCommandFailed, detail)
}

func (e *StepError) Unwrap() error {
	return ErrCommandFailed
}

// IsCommandFailure checks if an error came from a failed external command
func IsCommandFailure(err error) bool {
	return errors.Is(err, ErrCommandFailed)
}

// IsPatchFailure checks if an error came from the artifact patch phase
func IsPatchFailure(err error) bool {
	return errors.Is(err, ErrPatternNotFound) || errors.Is(err, ErrFileNotFound)
}
