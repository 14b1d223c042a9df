package planner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeplan/forgeplan/internal/feature"
)

func mustPlanner(t *testing.T, capacity int) *Planner {
	t.Helper()
	p, err := New(capacity)
	require.NoError(t, err)
	return p
}

func TestNewRejectsBadCapacity(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
	_, err = New(-5)
	assert.Error(t, err)
}

func TestTopologicalSortRespectsDependencies(t *testing.T) {
	p := mustPlanner(t, DefaultCapacity)

	features := []feature.Feature{
		{ID: "profiles", Dependencies: []string{"auth"}},
		{ID: "database"},
		{ID: "auth", Dependencies: []string{"database"}},
	}

	ordered, err := p.TopologicalSort(features)
	require.NoError(t, err)
	require.Len(t, ordered, 3)

	position := map[string]int{}
	for i, f := range ordered {
		position[f.ID] = i
	}
	assert.Less(t, position["database"], position["auth"])
	assert.Less(t, position["auth"], position["profiles"])
}

func TestTopologicalSortIgnoresUnknownDependencies(t *testing.T) {
	p := mustPlanner(t, DefaultCapacity)

	ordered, err := p.TopologicalSort([]feature.Feature{
		{ID: "auth", Dependencies: []string{"ghost"}},
	})
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Equal(t, "auth", ordered[0].ID)
}

func TestTopologicalSortCycleIsFatal(t *testing.T) {
	p := mustPlanner(t, DefaultCapacity)

	ordered, err := p.TopologicalSort([]feature.Feature{
		{ID: "f1", Dependencies: []string{"f2"}},
		{ID: "f2", Dependencies: []string{"f1"}},
	})

	require.Error(t, err)
	assert.Nil(t, ordered, "no partial plan on cycle")
	assert.Contains(t, err.Error(), "Circular")
}

func TestGroupIntoPhasesCapacity(t *testing.T) {
	p := mustPlanner(t, 10)

	features := []feature.Feature{
		{ID: "a", EstimatedWorkUnits: 4},
		{ID: "b", EstimatedWorkUnits: 4},
		{ID: "c", EstimatedWorkUnits: 4},
		{ID: "d", EstimatedWorkUnits: 4},
	}

	phases := p.GroupIntoPhases(features)
	require.Len(t, phases, 2)

	assert.Equal(t, 8, phases[0].TotalWorkUnits)
	assert.Equal(t, 8, phases[1].TotalWorkUnits)
	assert.Equal(t, 1, phases[0].Sequence)
	assert.Equal(t, 2, phases[1].Sequence)
	assert.True(t, phases[0].ReadyToStart)
	assert.False(t, phases[1].ReadyToStart)
	assert.Empty(t, phases[0].DependsOn)
	assert.Equal(t, []string{"Phase 1"}, phases[1].DependsOn)
}

func TestGroupIntoPhasesSingletonOverflow(t *testing.T) {
	p := mustPlanner(t, 10)

	phases := p.GroupIntoPhases([]feature.Feature{
		{ID: "small", EstimatedWorkUnits: 2},
		{ID: "huge", EstimatedWorkUnits: 25},
		{ID: "tail", EstimatedWorkUnits: 3},
	})

	require.Len(t, phases, 3)
	assert.Equal(t, "small", phases[0].Features[0].ID)
	assert.Equal(t, "huge", phases[1].Features[0].ID)
	require.Len(t, phases[1].Features, 1, "over-capacity feature is a singleton phase")
	assert.Equal(t, 25, phases[1].TotalWorkUnits)
	assert.Equal(t, "tail", phases[2].Features[0].ID)
}

func TestDurationBuckets(t *testing.T) {
	tests := []struct {
		units    int
		expected string
	}{
		{3, "10-15 minutes"},
		{5, "10-15 minutes"},
		{8, "15-25 minutes"},
		{15, "25-40 minutes"},
		{20, "25-40 minutes"},
		{30, "40-60 minutes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, durationBucket(tt.units), "units=%d", tt.units)
	}
}

func TestPlanFeaturesAggregation(t *testing.T) {
	p := mustPlanner(t, DefaultCapacity)

	features := []feature.Feature{
		{ID: "database", EstimatedWorkUnits: 4, DataEntities: []string{"schema"}},
		{ID: "auth", Dependencies: []string{"database"}, EstimatedWorkUnits: 6,
			RequiredAPIs: []string{"oauth"}, DataEntities: []string{"users"}},
		{ID: "payments", Dependencies: []string{"auth"}, EstimatedWorkUnits: 8,
			RequiredAPIs: []string{"stripe", "oauth"}, DataEntities: []string{"payments"}},
	}

	plan, err := p.PlanFeatures(features, []string{"stripe-account"})
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, 3, plan.TotalFeatures)
	assert.Equal(t, 18, plan.TotalWorkUnits)
	assert.Equal(t, []string{"oauth", "stripe"}, plan.ExternalAPIs, "deduplicated union")
	assert.Equal(t, []string{"payments", "schema", "users"}, plan.DataEntities)
	assert.Equal(t, []string{"stripe-account"}, plan.RequiredResources)
	assert.NotEmpty(t, plan.EstimatedTimeline)
}

func TestPlanFeaturesEmptyInput(t *testing.T) {
	p := mustPlanner(t, DefaultCapacity)
	_, err := p.PlanFeatures(nil, nil)
	assert.Error(t, err)
}

func TestEstimateTimelineUnits(t *testing.T) {
	phases := []Phase{{TotalWorkUnits: 4}} // upper bound 15 minutes
	assert.Equal(t, "~15 minutes", estimateTimeline(phases))

	phases = []Phase{{TotalWorkUnits: 18}, {TotalWorkUnits: 18}} // 40 + 40
	assert.Equal(t, "~1.3 hours", estimateTimeline(phases))
}

func TestPlanFeaturesCycleNoPartialResult(t *testing.T) {
	p := mustPlanner(t, DefaultCapacity)

	plan, err := p.PlanFeatures([]feature.Feature{
		{ID: "f1", Dependencies: []string{"f2"}, EstimatedWorkUnits: 1},
		{ID: "f2", Dependencies: []string{"f1"}, EstimatedWorkUnits: 1},
	}, nil)

	require.Error(t, err)
	assert.Nil(t, plan)
}

func TestPhaseNamesAreContiguous(t *testing.T) {
	p := mustPlanner(t, 5)

	var features []feature.Feature
	for i := 0; i < 12; i++ {
		features = append(features, feature.Feature{
			ID:                 fmt.Sprintf("f%d", i),
			EstimatedWorkUnits: 2,
		})
	}

	phases := p.GroupIntoPhases(features)
	for i, phase := range phases {
		assert.Equal(t, i+1, phase.Sequence)
		assert.True(t, strings.HasPrefix(phase.Name, "Phase "))
	}
}
