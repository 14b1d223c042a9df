package exitcode

import (
	"os"
	"strings"

	"github.com/forgeplan/forgeplan/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// PlanningError indicates a fatal planning failure (cycle, missing dependency)
	PlanningError = 3

	// ValidationError indicates a phase failed its completion gates
	ValidationError = 4

	// TimeoutError indicates the run's wall-clock deadline was exceeded
	TimeoutError = 5

	// RollbackError indicates a rollback could not be completed
	RollbackError = 6

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if forgeErr, ok := err.(*errors.ForgeError); ok {
		switch {
		case strings.HasPrefix(string(forgeErr.Code), "GRAPH-"),
			strings.HasPrefix(string(forgeErr.Code), "PLAN-"):
			return PlanningError
		case strings.HasPrefix(string(forgeErr.Code), "PHASE-"):
			return ValidationError
		case forgeErr.Code == errors.ErrCodeRunTimeout:
			return TimeoutError
		case strings.HasPrefix(string(forgeErr.Code), "ROLLBACK-"):
			return RollbackError
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Planning failures
	if strings.Contains(errMsg, "circular") || strings.Contains(errMsg, "missing dependency") {
		return PlanningError
	}

	// Validation failures
	if strings.Contains(errMsg, "incomplete") || strings.Contains(errMsg, "not ready") {
		return ValidationError
	}

	// Timeouts
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		return TimeoutError
	}

	// Rollback failures
	if strings.Contains(errMsg, "rollback") {
		return RollbackError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case PlanningError:
		return "Planning error (dependency cycle or missing dependency)"
	case ValidationError:
		return "Phase validation failed"
	case TimeoutError:
		return "Run timeout exceeded"
	case RollbackError:
		return "Rollback failed"
	default:
		return "Unknown error"
	}
}
