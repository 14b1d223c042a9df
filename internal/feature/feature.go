// Package feature defines the planning atom of forgeplan: a named unit of
// work with declared dependencies and a cost estimate, plus the immutable
// catalog of known feature kinds used to fill in defaults.
package feature

// Complexity represents the estimated complexity of a feature
type Complexity string

const (
	// ComplexityLow indicates a simple, well-scoped feature
	ComplexityLow Complexity = "low"

	// ComplexityMedium indicates a moderate feature with some scope
	ComplexityMedium Complexity = "medium"

	// ComplexityHigh indicates a complex feature requiring significant work
	ComplexityHigh Complexity = "high"
)

// String returns the string representation of the complexity
func (c Complexity) String() string {
	return string(c)
}

// IsValid returns true if this is a recognized complexity value
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	default:
		return false
	}
}

// Feature is a single unit of work in a build plan.
//
// Dependencies reference other features by id. Ids not present in the active
// feature set are ignored for ordering purposes during graph construction,
// but reported as errors by graph analysis.
type Feature struct {
	// ID uniquely identifies the feature within a plan
	ID string `json:"id" yaml:"id"`

	// Name is a short human-readable name
	Name string `json:"name" yaml:"name"`

	// Description explains what the feature does
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Dependencies lists feature ids that must be built first
	Dependencies []string `json:"dependencies" yaml:"dependencies"`

	// EstimatedWorkUnits is the planner's cost currency (artifact count)
	EstimatedWorkUnits int `json:"estimated_work_units" yaml:"estimated_work_units"`

	// Complexity is the estimated complexity (low, medium, high)
	Complexity Complexity `json:"complexity" yaml:"complexity"`

	// Priority breaks ties during ordering; lower runs earlier
	Priority int `json:"priority" yaml:"priority"`

	// RequiredAPIs lists external APIs this feature integrates with
	RequiredAPIs []string `json:"required_apis,omitempty" yaml:"required_apis,omitempty"`

	// DataEntities lists the data entities this feature introduces
	DataEntities []string `json:"data_entities,omitempty" yaml:"data_entities,omitempty"`
}

// DependsOn reports whether the feature declares a dependency on the given id.
func (f *Feature) DependsOn(id string) bool {
	for _, dep := range f.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// HasDependencies returns true if the feature depends on other features.
func (f *Feature) HasDependencies() bool {
	return len(f.Dependencies) > 0
}
