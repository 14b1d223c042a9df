package exitcode

import (
	stderrors "errors"
	"testing"

	"github.com/forgeplan/forgeplan/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"PlanningError", PlanningError, 3},
		{"ValidationError", ValidationError, 4},
		{"TimeoutError", TimeoutError, 5},
		{"RollbackError", RollbackError, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCodeFromCodedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "cycle error",
			err:      errors.NewCycleError([]string{"a", "b", "a"}),
			expected: PlanningError,
		},
		{
			name:     "missing dependency error",
			err:      errors.NewMissingDependencyError("auth", "database"),
			expected: PlanningError,
		},
		{
			name:     "plan error",
			err:      errors.New(errors.ErrCodePlanEmpty, "no features to plan"),
			expected: PlanningError,
		},
		{
			name:     "phase incomplete error",
			err:      errors.NewPhaseIncompleteError(2, 10, 7),
			expected: ValidationError,
		},
		{
			name:     "run timeout error",
			err:      errors.NewRunTimeoutError("30m"),
			expected: TimeoutError,
		},
		{
			name:     "rollback error",
			err:      errors.NewNoRollbackPointError("Phase 2"),
			expected: RollbackError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDetermineExitCodeFromMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "circular dependency message",
			err:      stderrors.New("Circular dependency detected: a -> b -> a"),
			expected: PlanningError,
		},
		{
			name:     "phase not ready message",
			err:      stderrors.New("phase 2 is not ready"),
			expected: ValidationError,
		},
		{
			name:     "timeout message",
			err:      stderrors.New("context deadline exceeded"),
			expected: TimeoutError,
		},
		{
			name:     "rollback message",
			err:      stderrors.New("rollback restore failed"),
			expected: RollbackError,
		},
		{
			name:     "unknown command",
			err:      stderrors.New("unknown command \"pln\""),
			expected: UsageError,
		},
		{
			name:     "required flag",
			err:      stderrors.New("required flag \"features\" not set"),
			expected: UsageError,
		},
		{
			name:     "unrecognized error",
			err:      stderrors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	if got := GetExitCodeDescription(PlanningError); got != "Planning error (dependency cycle or missing dependency)" {
		t.Errorf("unexpected description: %q", got)
	}
	if got := GetExitCodeDescription(99); got != "Unknown error" {
		t.Errorf("unexpected description for unknown code: %q", got)
	}
}
