// Package validator gates the transition between phases: completion
// percentage, readiness preconditions and advisory warnings.
package validator

import (
	"fmt"
	"strings"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/planner"
)

// CompletionThreshold is the minimum generated/expected percentage a phase
// needs to pass validation.
const CompletionThreshold = 80

// Result carries the outcome of one validation pass.
type Result struct {
	IsValid              bool     `json:"is_valid"`
	Errors               []string `json:"errors,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
	CompletionPercentage int      `json:"completion_percentage"`
	NextSteps            []string `json:"next_steps,omitempty"`
}

// Status is a read-only projection of a phase's validation state.
type Status struct {
	Sequence             int  `json:"sequence"`
	Completed            bool `json:"completed"`
	CompletionPercentage int  `json:"completion_percentage"`
}

// criticalPatterns are path fragments phase 1 is expected to produce for a
// typical application: some form of auth, persistent storage and an API
// surface. Missing all of a group is advisory only.
var criticalPatterns = [][]string{
	{"auth", "login", "signup"},
	{"database", "schema", "migration"},
	{"api", "endpoint", "route"},
}

// Validator validates phase completion and readiness.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// ValidatePhase checks a finished phase against what planning expected.
//
// Every feature in the phase missing from completedFeatureIDs is a hard
// error. Under 80% generated artifacts is a hard error; between 80% and
// 100% a soft warning. Phase 1 additionally gets advisories when none of
// the generated paths look like critical application plumbing.
func (v *Validator) ValidatePhase(phase *planner.Phase, generated []artifact.Artifact, completedFeatureIDs map[string]bool) *Result {
	result := &Result{}

	for _, f := range phase.Features {
		if !completedFeatureIDs[f.ID] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("feature %q in phase %d was not completed", f.ID, phase.Sequence))
		}
	}

	expected := phase.ExpectedArtifacts()
	if expected > 0 {
		pct := len(generated) * 100 / expected
		if pct > 100 {
			pct = 100
		}
		result.CompletionPercentage = pct

		if pct < CompletionThreshold {
			result.Errors = append(result.Errors,
				fmt.Sprintf("phase %d expected %d artifacts but generated only %d (%d%%)",
					phase.Sequence, expected, len(generated), pct))
		} else if pct < 100 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("phase %d generated %d of %d expected artifacts", phase.Sequence, len(generated), expected))
		}
	} else {
		result.CompletionPercentage = 100
	}

	if phase.Sequence == 1 {
		for _, group := range criticalPatterns {
			if !anyPathMatches(generated, group) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("phase 1 produced no artifact matching %s; verify the foundation is complete",
						strings.Join(group, "/")))
			}
		}
	}

	result.IsValid = len(result.Errors) == 0

	if result.IsValid {
		result.NextSteps = append(result.NextSteps,
			fmt.Sprintf("Proceed to phase %d", phase.Sequence+1))
	} else {
		result.NextSteps = append(result.NextSteps, "Fix errors before continuing:")
		for _, msg := range result.Errors {
			result.NextSteps = append(result.NextSteps, "  - "+msg)
		}
	}

	return result
}

// IsPhaseReady checks the preconditions for starting a phase.
//
// A missing predecessor phase is a hard error. Missing external APIs are
// soft warnings, each paired with a configuration next step. The union of
// the phase's feature dependencies is always listed as an informational
// next step.
func (v *Validator) IsPhaseReady(phase *planner.Phase, completedPhases map[int]bool, availableAPIs []string) *Result {
	result := &Result{CompletionPercentage: 0}

	if phase.Sequence > 1 && !completedPhases[phase.Sequence-1] {
		result.Errors = append(result.Errors,
			fmt.Sprintf("phase %d is not ready: phase %d has not completed", phase.Sequence, phase.Sequence-1))
	}

	available := map[string]bool{}
	for _, api := range availableAPIs {
		available[api] = true
	}

	seenAPI := map[string]bool{}
	for _, f := range phase.Features {
		for _, api := range f.RequiredAPIs {
			if available[api] || seenAPI[api] {
				continue
			}
			seenAPI[api] = true
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("external API %q is not configured", api))
			result.NextSteps = append(result.NextSteps, fmt.Sprintf("Configure %s", api))
		}
	}

	deps := dependencyUnion(phase)
	if len(deps) > 0 {
		result.NextSteps = append(result.NextSteps,
			fmt.Sprintf("Feature dependencies for this phase: %s", strings.Join(deps, ", ")))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// PhaseStatus projects validation into a completion flag: a phase counts as
// completed only when valid and at least 80% generated.
func (v *Validator) PhaseStatus(phase *planner.Phase, result *Result) Status {
	return Status{
		Sequence:             phase.Sequence,
		Completed:            result.IsValid && result.CompletionPercentage >= CompletionThreshold,
		CompletionPercentage: result.CompletionPercentage,
	}
}

func anyPathMatches(generated []artifact.Artifact, fragments []string) bool {
	for _, a := range generated {
		p := strings.ToLower(a.Path)
		for _, fragment := range fragments {
			if strings.Contains(p, fragment) {
				return true
			}
		}
	}
	return false
}

func dependencyUnion(phase *planner.Phase) []string {
	seen := map[string]bool{}
	var deps []string
	for _, f := range phase.Features {
		for _, dep := range f.Dependencies {
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}
