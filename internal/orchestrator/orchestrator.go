// Package orchestrator drives a full planning and execution run:
// dependency analysis, phase planning, then the sequential phase loop of
// snapshot, build, validate, advance. One Orchestrator run owns its graph
// and rollback registry exclusively; nothing here is shared across runs.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/errors"
	"github.com/forgeplan/forgeplan/internal/executor"
	"github.com/forgeplan/forgeplan/internal/feature"
	"github.com/forgeplan/forgeplan/internal/graph"
	"github.com/forgeplan/forgeplan/internal/log"
	"github.com/forgeplan/forgeplan/internal/planner"
	"github.com/forgeplan/forgeplan/internal/rollback"
	"github.com/forgeplan/forgeplan/internal/validator"
)

// FeatureDetector turns a free-text request into features. Classification
// is an external concern; the orchestrator only consumes its output.
type FeatureDetector interface {
	DetectFeatures(ctx context.Context, request string) ([]feature.Feature, error)
}

// ResourceCatalog maps a feature set to third-party resource requirements
// (payment providers, mail services and the like). Read-only lookup.
type ResourceCatalog interface {
	DetectResources(features []feature.Feature) []string
}

// Config holds the per-run knobs.
type Config struct {
	// Capacity is the work-unit limit per phase
	Capacity int

	// Timeout bounds the whole run's wall clock. Zero means no limit.
	Timeout time.Duration

	// AvailableAPIs lists external APIs already configured, checked
	// during phase readiness
	AvailableAPIs []string
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		Capacity: planner.DefaultCapacity,
		Timeout:  30 * time.Minute,
	}
}

// RunResult is the outcome of one orchestration run. The rollback
// registry stays attached so the caller can undo or retry the failed
// phase before discarding the result.
type RunResult struct {
	RunID        string                  `json:"run_id"`
	Analysis     *graph.Analysis         `json:"analysis,omitempty"`
	Plan         *planner.Plan           `json:"plan,omitempty"`
	PhaseResults []*executor.PhaseResult `json:"phase_results"`
	Validations  []*validator.Result     `json:"validations"`
	Success      bool                    `json:"success"`
	HaltedPhase  int                     `json:"halted_phase,omitempty"`
	Duration     time.Duration           `json:"duration"`
	Errors       []string                `json:"errors,omitempty"`

	rollback *rollback.Manager
}

// RollbackPhase restores the snapshot taken before the given phase.
// Only valid after a halted run; the consumed point is removed either way.
func (r *RunResult) RollbackPhase(phaseID string, restore rollback.RestoreFunc) *rollback.Result {
	return r.rollback.Rollback(phaseID, restore)
}

// Orchestrator coordinates one run at a time. Collaborators beyond the
// generator are optional and set before Run.
type Orchestrator struct {
	config    Config
	generator executor.Generator
	detector  FeatureDetector
	catalog   ResourceCatalog
	store     PersistenceStore
	logger    *log.Logger
	progress  executor.ProgressFunc
}

// New creates an orchestrator around the given artifact generator.
func New(generator executor.Generator, config Config) *Orchestrator {
	return &Orchestrator{
		config:    config,
		generator: generator,
		logger:    log.DefaultLogger(),
	}
}

// SetFeatureDetector sets the detector used by RunRequest.
// This must be called before RunRequest.
func (o *Orchestrator) SetFeatureDetector(detector FeatureDetector) {
	o.detector = detector
}

// SetResourceCatalog sets the external resource catalog consulted during
// planning. Optional.
func (o *Orchestrator) SetResourceCatalog(catalog ResourceCatalog) {
	o.catalog = catalog
}

// SetPersistenceStore sets the store that run state and artifacts are
// handed to between phases. Optional.
func (o *Orchestrator) SetPersistenceStore(store PersistenceStore) {
	o.store = store
}

// SetLogger overrides the process-default logger.
func (o *Orchestrator) SetLogger(logger *log.Logger) {
	o.logger = logger
}

// SetProgressCallback sets a callback forwarded to the executor.
func (o *Orchestrator) SetProgressCallback(fn executor.ProgressFunc) {
	o.progress = fn
}

// RunRequest detects features from a free-text request and runs them.
func (o *Orchestrator) RunRequest(ctx context.Context, request string) (*RunResult, error) {
	if o.detector == nil {
		return nil, errors.New(errors.ErrCodeRunHalted, "no feature detector configured")
	}
	features, err := o.detector.DetectFeatures(ctx, request)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRunHalted, "feature detection failed", err)
	}
	return o.Run(ctx, features)
}

// Run analyzes the feature set, plans it and executes the phases in
// order. Planning errors (cycles, missing dependencies) are fatal and
// produce no partial plan; execution failures halt remaining phases but
// return every completed result plus the failing one.
func (o *Orchestrator) Run(ctx context.Context, features []feature.Feature) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID:    uuid.NewString(),
		rollback: rollback.NewManager(),
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	o.logger.Info("run started", "run_id", result.RunID, "features", len(features))

	g := graph.New()
	g.Build(features)
	analysis, err := g.Analyze()
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis
	if !analysis.IsValid {
		result.Errors = append(result.Errors, analysis.Errors...)
		result.Duration = time.Since(start)
		return result, errors.New(errors.ErrCodeGraphCycle,
			fmt.Sprintf("planning aborted: %s", analysis.Errors[0]))
	}

	p, err := planner.New(o.config.Capacity)
	if err != nil {
		return nil, err
	}

	var resources []string
	if o.catalog != nil {
		resources = o.catalog.DetectResources(features)
	}

	plan, err := p.PlanFeatures(features, resources)
	if err != nil {
		return nil, err
	}
	result.Plan = plan

	o.executePlan(ctx, result, plan)
	result.Duration = time.Since(start)
	return result, nil
}

// RunArtifacts plans and executes a flat artifact list using the
// role-based breakdown instead of the feature graph.
func (o *Orchestrator) RunArtifacts(ctx context.Context, artifacts []artifact.Artifact) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID:    uuid.NewString(),
		rollback: rollback.NewManager(),
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	o.logger.Info("run started", "run_id", result.RunID, "artifacts", len(artifacts))

	p, err := planner.New(o.config.Capacity)
	if err != nil {
		return nil, err
	}
	plan, err := p.BreakdownIntoPhases(artifacts)
	if err != nil {
		return nil, err
	}
	result.Plan = plan

	o.executePlan(ctx, result, plan)
	result.Duration = time.Since(start)
	return result, nil
}

// executePlan runs the phase loop: snapshot, build, validate, advance.
// On the first phase that fails generation or validation it records the
// halt and leaves that phase's rollback point in the registry for the
// caller. All earlier points are discarded as their phases complete.
func (o *Orchestrator) executePlan(ctx context.Context, result *RunResult, plan *planner.Plan) {
	exec := executor.New(o.generator, o.logger)
	if o.progress != nil {
		exec.SetProgressCallback(o.progress)
	}
	val := validator.New()

	completedFeatures := map[string]bool{}
	completedPhases := map[int]bool{}
	var produced []artifact.Artifact

	for i := range plan.Phases {
		phase := &plan.Phases[i]

		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, o.deadlineError(err).Error())
			result.HaltedPhase = phase.Sequence
			return
		}

		ready := val.IsPhaseReady(phase, completedPhases, o.config.AvailableAPIs)
		if !ready.IsValid {
			result.Validations = append(result.Validations, ready)
			result.Errors = append(result.Errors, ready.Errors...)
			result.HaltedPhase = phase.Sequence
			return
		}

		result.Validations = append(result.Validations, ready)
		o.rollbackPoint(result, phase, produced)

		phaseResult := exec.BuildPhase(ctx, phase)
		result.PhaseResults = append(result.PhaseResults, phaseResult)

		if phaseResult.Success {
			for _, f := range phase.Features {
				completedFeatures[f.ID] = true
			}
		}

		validation := val.ValidatePhase(phase, phaseResult.Artifacts, completedFeatures)
		result.Validations = append(result.Validations, validation)

		if !phaseResult.Success || !validation.IsValid {
			result.Errors = append(result.Errors, phaseResult.Errors...)
			result.Errors = append(result.Errors, validation.Errors...)
			result.HaltedPhase = phase.Sequence
			o.logger.Warn("run halted",
				"run_id", result.RunID,
				"phase", phase.Sequence,
				"errors", len(result.Errors))
			return
		}

		result.rollback.Discard(phase.Name)
		completedPhases[phase.Sequence] = true
		produced = append(produced, phaseResult.Artifacts...)

		o.persist(ctx, result, completedPhases, completedFeatures, phaseResult.Artifacts)
	}

	result.Success = true
	result.rollback.ClearAll()
	o.logger.Info("run completed",
		"run_id", result.RunID,
		"phases", len(plan.Phases),
		"artifacts", len(produced))
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.config.Timeout)
}

func (o *Orchestrator) deadlineError(err error) error {
	if err == context.DeadlineExceeded {
		return errors.NewRunTimeoutError(o.config.Timeout.String())
	}
	return errors.Wrap(errors.ErrCodeRunCanceled, "run canceled", err)
}

func (o *Orchestrator) rollbackPoint(result *RunResult, phase *planner.Phase, produced []artifact.Artifact) {
	point := result.rollback.CreateRollbackPoint(phase.Name, produced)
	o.logger.Debug("rollback point created",
		"phase", phase.Name,
		"files", len(point.Files))
}

// persist hands run state and the phase's artifacts to the external
// store. Only between phases, never during one; a store failure is
// logged but does not fail the run.
func (o *Orchestrator) persist(ctx context.Context, result *RunResult, phases map[int]bool, features map[string]bool, artifacts []artifact.Artifact) {
	if o.store == nil {
		return
	}

	if err := o.store.SaveArtifacts(ctx, artifacts); err != nil {
		o.logger.Warn("artifact persistence failed", "run_id", result.RunID, "error", err)
	}
	if err := o.store.SaveRunState(ctx, NewRunState(result.RunID, phases, features)); err != nil {
		o.logger.Warn("run state persistence failed", "run_id", result.RunID, "error", err)
	}
}
