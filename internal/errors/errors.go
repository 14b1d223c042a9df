package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeGraphCycle      ErrorCode = "GRAPH-001"
	ErrCodeGraphMissingDep ErrorCode = "GRAPH-002"
	ErrCodeGraphNotBuilt   ErrorCode = "GRAPH-003"
	ErrCodeGraphSelfDep    ErrorCode = "GRAPH-004"

	// Planning errors (PLAN-001 to PLAN-099)
	ErrCodePlanCyclicDep      ErrorCode = "PLAN-001"
	ErrCodePlanEmpty          ErrorCode = "PLAN-002"
	ErrCodePlanInvalidCap     ErrorCode = "PLAN-003"
	ErrCodePlanFeatureMissing ErrorCode = "PLAN-004"

	// Phase execution errors (PHASE-001 to PHASE-099)
	ErrCodePhaseGeneration ErrorCode = "PHASE-001"
	ErrCodePhaseValidation ErrorCode = "PHASE-002"
	ErrCodePhaseIncomplete ErrorCode = "PHASE-003"
	ErrCodePhaseNotReady   ErrorCode = "PHASE-004"

	// Rollback errors (ROLLBACK-001 to ROLLBACK-099)
	ErrCodeRollbackPointMissing ErrorCode = "ROLLBACK-001"
	ErrCodeRollbackRestore      ErrorCode = "ROLLBACK-002"

	// Run errors (RUN-001 to RUN-099)
	ErrCodeRunTimeout  ErrorCode = "RUN-001"
	ErrCodeRunCanceled ErrorCode = "RUN-002"
	ErrCodeRunHalted   ErrorCode = "RUN-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileUnmarshal   ErrorCode = "IO-003"
	ErrCodeFileWriteFailed ErrorCode = "IO-004"
)

// ForgeError represents an enhanced error with code, suggestions, and a cause
type ForgeError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ForgeError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// New creates a new ForgeError
func New(code ErrorCode, message string) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ForgeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ForgeError) WithSuggestion(suggestion string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ForgeError) WithSuggestions(suggestions ...string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewCycleError creates a circular-dependency error. The message always
// contains the word "Circular" so callers can match on it.
func NewCycleError(cycle []string) *ForgeError {
	return New(ErrCodeGraphCycle, fmt.Sprintf("Circular dependency detected: %s", strings.Join(cycle, " -> "))).
		WithSuggestion("Remove one of the dependencies to break the cycle").
		WithSuggestion("Split the affected feature into smaller independent features")
}

// NewMissingDependencyError creates an error for a dependency id that is not
// part of the active feature set.
func NewMissingDependencyError(featureID, depID string) *ForgeError {
	return New(ErrCodeGraphMissingDep, fmt.Sprintf("feature %q depends on unknown feature %q", featureID, depID)).
		WithSuggestion(fmt.Sprintf("Remove %q from the dependency list or add a feature with that id", depID))
}

// NewNoRollbackPointError creates the error returned when rolling back a
// phase that was never snapshotted.
func NewNoRollbackPointError(phaseID string) *ForgeError {
	return New(ErrCodeRollbackPointMissing, fmt.Sprintf("No rollback point found for phase: %s", phaseID)).
		WithSuggestion("Create a rollback point before executing the phase")
}

// NewRunTimeoutError creates a whole-run deadline error.
func NewRunTimeoutError(elapsed string) *ForgeError {
	return New(ErrCodeRunTimeout, fmt.Sprintf("run abandoned: wall-clock timeout exceeded after %s", elapsed)).
		WithSuggestion("Increase the run timeout or reduce the plan size").
		WithSuggestion("Resume from the last persisted phase with an external checkpoint")
}

// NewPhaseIncompleteError creates an under-generation error for a phase.
func NewPhaseIncompleteError(phase int, expected, generated int) *ForgeError {
	return New(ErrCodePhaseIncomplete, fmt.Sprintf("phase %d incomplete: expected %d artifacts, generated %d", phase, expected, generated)).
		WithSuggestion("Retry the phase with corrected generation input").
		WithSuggestion("Roll the phase back and re-plan if retries keep failing")
}

// NewFileUnmarshalError creates a parse error for an input file.
func NewFileUnmarshalError(path string, format string, cause error) *ForgeError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
