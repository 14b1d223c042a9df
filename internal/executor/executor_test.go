package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/feature"
	"github.com/forgeplan/forgeplan/internal/planner"
)

type fakeGenerator struct {
	failFeatures  map[string]bool
	failArtifacts map[string]bool
	content       map[string]string
	calls         []string
}

func (g *fakeGenerator) GenerateFeature(_ context.Context, f feature.Feature) ([]artifact.Artifact, error) {
	g.calls = append(g.calls, f.ID)
	if g.failFeatures[f.ID] {
		return nil, errors.New("generation backend unavailable")
	}
	content := g.content[f.ID]
	if content == "" {
		content = fmt.Sprintf("export const %s = () => {}\n", f.ID)
	}
	return []artifact.Artifact{{Path: "src/" + f.ID + ".ts", Content: content}}, nil
}

func (g *fakeGenerator) FillArtifact(_ context.Context, placeholder artifact.Artifact) (artifact.Artifact, error) {
	g.calls = append(g.calls, placeholder.Path)
	if g.failArtifacts[placeholder.Path] {
		return artifact.Artifact{}, errors.New("generation backend unavailable")
	}
	content := g.content[placeholder.Path]
	if content == "" {
		content = "export default function Page() {}\n"
	}
	return artifact.Artifact{Path: placeholder.Path, Content: content}, nil
}

func testFeature(id string, units int) feature.Feature {
	return feature.Feature{
		ID:                 id,
		Name:               id,
		EstimatedWorkUnits: units,
		Complexity:         feature.ComplexityLow,
	}
}

func TestBuildPhaseSuccess(t *testing.T) {
	gen := &fakeGenerator{}
	exec := New(gen, nil)

	phase := &planner.Phase{
		Sequence: 1,
		Name:     "Phase 1",
		Features: []feature.Feature{testFeature("database", 3), testFeature("auth", 5)},
	}

	result := exec.BuildPhase(context.Background(), phase)

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"src/database.ts", "src/auth.ts"}, result.GeneratedArtifacts)
	assert.Len(t, result.ValidationResults, 2)
	for _, vr := range result.ValidationResults {
		assert.True(t, vr.Passed, vr.Rule)
	}
	assert.Greater(t, result.Duration.Nanoseconds(), int64(0))
}

func TestBuildPhaseFailureDoesNotBlockSiblings(t *testing.T) {
	gen := &fakeGenerator{failFeatures: map[string]bool{"auth": true}}
	exec := New(gen, nil)

	phase := &planner.Phase{
		Sequence: 1,
		Features: []feature.Feature{testFeature("database", 3), testFeature("auth", 5), testFeature("api", 4)},
	}

	result := exec.BuildPhase(context.Background(), phase)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "auth")
	// the failure must not prevent later features from being attempted
	assert.Equal(t, []string{"database", "auth", "api"}, gen.calls)
	assert.Equal(t, []string{"src/database.ts", "src/api.ts"}, result.GeneratedArtifacts)
}

func TestBuildPhaseFailingRuleAppendsDescription(t *testing.T) {
	gen := &fakeGenerator{content: map[string]string{
		"database": "export const open = (() => {\n", // unbalanced
	}}
	exec := New(gen, nil)

	phase := &planner.Phase{
		Sequence: 1,
		Features: []feature.Feature{testFeature("database", 3)},
	}

	result := exec.BuildPhase(context.Background(), phase)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "unbalanced")

	var balance *RuleResult
	for i := range result.ValidationResults {
		if result.ValidationResults[i].Rule == "syntactic-balance" {
			balance = &result.ValidationResults[i]
		}
	}
	require.NotNil(t, balance)
	assert.False(t, balance.Passed)
}

func TestBuildPhaseArtifactPlaceholders(t *testing.T) {
	gen := &fakeGenerator{}
	exec := New(gen, nil)

	phase := &planner.Phase{
		Sequence: 1,
		Artifacts: []artifact.Artifact{
			{Path: "src/lib/db.ts"},
			{Path: "src/lib/config.ts"},
		},
	}

	result := exec.BuildPhase(context.Background(), phase)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"src/lib/db.ts", "src/lib/config.ts"}, result.GeneratedArtifacts)
	for _, a := range result.Artifacts {
		assert.NotEmpty(t, a.Content)
	}
}

func TestBuildPhaseProgressCallback(t *testing.T) {
	gen := &fakeGenerator{failFeatures: map[string]bool{"auth": true}}
	exec := New(gen, nil)

	type event struct {
		phase  int
		path   string
		status string
	}
	var events []event
	exec.SetProgressCallback(func(phase int, path, status string, err error) {
		events = append(events, event{phase, path, status})
		if status == "failed" {
			assert.Error(t, err)
		}
	})

	phase := &planner.Phase{
		Sequence: 2,
		Features: []feature.Feature{testFeature("database", 3), testFeature("auth", 5)},
	}
	exec.BuildPhase(context.Background(), phase)

	require.Len(t, events, 2)
	assert.Equal(t, event{2, "database", "completed"}, events[0])
	assert.Equal(t, event{2, "auth", "failed"}, events[1])
}

func TestBuildInPhasesHaltsOnFirstFailure(t *testing.T) {
	gen := &fakeGenerator{failFeatures: map[string]bool{"payments": true}}
	exec := New(gen, nil)

	plan := &planner.Plan{
		Phases: []planner.Phase{
			{Sequence: 1, Features: []feature.Feature{testFeature("database", 3)}},
			{Sequence: 2, Features: []feature.Feature{testFeature("payments", 8)}},
			{Sequence: 3, Features: []feature.Feature{testFeature("search", 5)}},
		},
	}

	results := exec.BuildInPhases(context.Background(), plan)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotContains(t, gen.calls, "search")
}

func TestBuildInPhasesAllSucceed(t *testing.T) {
	gen := &fakeGenerator{}
	exec := New(gen, nil)

	plan := &planner.Plan{
		Phases: []planner.Phase{
			{Sequence: 1, Features: []feature.Feature{testFeature("database", 3)}},
			{Sequence: 2, Features: []feature.Feature{testFeature("api", 4)}},
		},
	}

	results := exec.BuildInPhases(context.Background(), plan)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestBuildPhaseCancelledContext(t *testing.T) {
	gen := &fakeGenerator{}
	exec := New(gen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	phase := &planner.Phase{
		Sequence: 1,
		Features: []feature.Feature{testFeature("database", 3)},
	}
	result := exec.BuildPhase(ctx, phase)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "interrupted")
	assert.Empty(t, gen.calls)
}
