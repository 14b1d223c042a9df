// Package executor runs planned phases: it generates each phase's
// artifacts through the pluggable generator, applies the phase's
// validation rules and reports per-phase results.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/feature"
	"github.com/forgeplan/forgeplan/internal/log"
	"github.com/forgeplan/forgeplan/internal/planner"
)

// Generator produces artifact content. Implementations typically delegate
// to a remote code-generation service; the executor only sees the filled
// artifacts or the per-artifact error.
type Generator interface {
	// GenerateFeature produces the artifacts for one feature
	GenerateFeature(ctx context.Context, f feature.Feature) ([]artifact.Artifact, error)

	// FillArtifact produces content for one artifact placeholder
	FillArtifact(ctx context.Context, placeholder artifact.Artifact) (artifact.Artifact, error)
}

// ProgressFunc is called as artifacts settle during a phase.
type ProgressFunc func(phase int, artifactPath, status string, err error)

// RuleResult records one rule evaluation against a phase's artifact set.
type RuleResult struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
}

// PhaseResult is the outcome of building one phase.
type PhaseResult struct {
	Phase              *planner.Phase `json:"phase"`
	Success            bool           `json:"success"`
	GeneratedArtifacts []string       `json:"generated_artifacts"`
	ValidationResults  []RuleResult   `json:"validation_results,omitempty"`
	Errors             []string       `json:"errors,omitempty"`
	Duration           time.Duration  `json:"duration"`

	// Artifacts holds the filled artifacts for downstream phases
	Artifacts []artifact.Artifact `json:"-"`
}

// Executor builds phases one at a time in planned order.
type Executor struct {
	generator Generator
	logger    *log.Logger
	progress  ProgressFunc
}

// New creates an Executor around the given generator.
func New(generator Generator, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Executor{generator: generator, logger: logger}
}

// SetProgressCallback sets a callback invoked per artifact status change.
func (e *Executor) SetProgressCallback(fn ProgressFunc) {
	e.progress = fn
}

// BuildPhase generates every artifact in the phase, then evaluates the
// phase's validation rules against the full artifact set. A failing
// artifact is recorded but does not block its siblings; a failing rule
// appends its description to the errors. Success means no errors at all.
func (e *Executor) BuildPhase(ctx context.Context, phase *planner.Phase) *PhaseResult {
	start := time.Now()
	result := &PhaseResult{Phase: phase}

	e.logger.Info("phase started",
		"phase", phase.Sequence,
		"features", len(phase.Features),
		"artifacts", phase.ExpectedArtifacts())

	// Artifacts are generated strictly one at a time in planned order;
	// the next artifact is not started until the previous one settles.
	for _, f := range phase.Features {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("phase %d interrupted: %v", phase.Sequence, err))
			break
		}

		generated, err := e.generator.GenerateFeature(ctx, f)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to generate feature %q: %v", f.ID, err))
			e.report(phase.Sequence, f.ID, "failed", err)
			continue
		}
		for _, a := range generated {
			result.Artifacts = append(result.Artifacts, a)
			result.GeneratedArtifacts = append(result.GeneratedArtifacts, a.Path)
		}
		e.report(phase.Sequence, f.ID, "completed", nil)
	}

	for _, placeholder := range phase.Artifacts {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("phase %d interrupted: %v", phase.Sequence, err))
			break
		}

		filled, err := e.generator.FillArtifact(ctx, placeholder)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to generate artifact %q: %v", placeholder.Path, err))
			e.report(phase.Sequence, placeholder.Path, "failed", err)
			continue
		}
		result.Artifacts = append(result.Artifacts, filled)
		result.GeneratedArtifacts = append(result.GeneratedArtifacts, filled.Path)
		e.report(phase.Sequence, filled.Path, "completed", nil)
	}

	for _, rule := range RulesForPhase(phase) {
		passed := rule.Check(result.Artifacts)
		result.ValidationResults = append(result.ValidationResults, RuleResult{
			Rule:   rule.Name,
			Passed: passed,
		})
		if !passed {
			result.Errors = append(result.Errors, rule.Description)
		}
	}

	result.Success = len(result.Errors) == 0
	result.Duration = time.Since(start)

	if result.Success {
		e.logger.Info("phase completed",
			"phase", phase.Sequence,
			"artifacts", len(result.Artifacts),
			"duration", result.Duration)
	} else {
		e.logger.Warn("phase failed",
			"phase", phase.Sequence,
			"errors", len(result.Errors),
			"duration", result.Duration)
	}

	return result
}

// BuildInPhases executes the plan's phases strictly in sequence order and
// stops at the first failed phase; later phases are not attempted even if
// independent. The returned slice holds all completed results plus the
// failing one.
func (e *Executor) BuildInPhases(ctx context.Context, plan *planner.Plan) []*PhaseResult {
	var results []*PhaseResult

	for i := range plan.Phases {
		result := e.BuildPhase(ctx, &plan.Phases[i])
		results = append(results, result)
		if !result.Success {
			e.logger.Warn("halting remaining phases",
				"failed_phase", plan.Phases[i].Sequence,
				"remaining", len(plan.Phases)-i-1)
			break
		}
	}

	return results
}

func (e *Executor) report(phase int, path, status string, err error) {
	if e.progress != nil {
		e.progress(phase, path, status, err)
	}
}
