package feature

import "sort"

// KindDefaults holds the default planning attributes for a known feature kind.
type KindDefaults struct {
	Dependencies []string
	WorkUnits    int
	Complexity   Complexity
	RequiredAPIs []string
	DataEntities []string
}

// Catalog is an immutable lookup of known feature kinds and their defaults.
//
// A catalog is injected at construction so runs with different catalogs can
// be tested in isolation; there is no package-level default state.
type Catalog struct {
	kinds map[string]KindDefaults
}

// NewCatalog builds a catalog from the given kind map. The input map and its
// slices are deep-copied; later mutation of the source does not affect the
// catalog.
func NewCatalog(kinds map[string]KindDefaults) *Catalog {
	copied := make(map[string]KindDefaults, len(kinds))
	for name, def := range kinds {
		copied[name] = KindDefaults{
			Dependencies: append([]string(nil), def.Dependencies...),
			WorkUnits:    def.WorkUnits,
			Complexity:   def.Complexity,
			RequiredAPIs: append([]string(nil), def.RequiredAPIs...),
			DataEntities: append([]string(nil), def.DataEntities...),
		}
	}
	return &Catalog{kinds: copied}
}

// Lookup returns the defaults for a kind and whether the kind is known.
// Returned slices are copies; callers may mutate them freely.
func (c *Catalog) Lookup(kind string) (KindDefaults, bool) {
	def, ok := c.kinds[kind]
	if !ok {
		return KindDefaults{}, false
	}
	return KindDefaults{
		Dependencies: append([]string(nil), def.Dependencies...),
		WorkUnits:    def.WorkUnits,
		Complexity:   def.Complexity,
		RequiredAPIs: append([]string(nil), def.RequiredAPIs...),
		DataEntities: append([]string(nil), def.DataEntities...),
	}, true
}

// Kinds returns the sorted list of known kind names.
func (c *Catalog) Kinds() []string {
	names := make([]string, 0, len(c.kinds))
	for name := range c.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Materialize turns a kind name into a Feature with catalog defaults applied.
// Unknown kinds yield a medium-complexity feature with no dependencies.
func (c *Catalog) Materialize(kind string) Feature {
	def, ok := c.kinds[kind]
	if !ok {
		return Feature{
			ID:                 kind,
			Name:               kind,
			Dependencies:       []string{},
			EstimatedWorkUnits: 5,
			Complexity:         ComplexityMedium,
		}
	}
	return Feature{
		ID:                 kind,
		Name:               kind,
		Dependencies:       append([]string(nil), def.Dependencies...),
		EstimatedWorkUnits: def.WorkUnits,
		Complexity:         def.Complexity,
		RequiredAPIs:       append([]string(nil), def.RequiredAPIs...),
		DataEntities:       append([]string(nil), def.DataEntities...),
	}
}

// DefaultCatalog returns the built-in catalog of common application features.
// Callers that need different defaults construct their own catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[string]KindDefaults{
		"database": {
			WorkUnits:    4,
			Complexity:   ComplexityHigh,
			DataEntities: []string{"schema"},
		},
		"auth": {
			Dependencies: []string{"database"},
			WorkUnits:    6,
			Complexity:   ComplexityHigh,
			DataEntities: []string{"users", "sessions"},
		},
		"user-profiles": {
			Dependencies: []string{"auth"},
			WorkUnits:    4,
			Complexity:   ComplexityMedium,
			DataEntities: []string{"profiles"},
		},
		"api": {
			Dependencies: []string{"database"},
			WorkUnits:    5,
			Complexity:   ComplexityMedium,
		},
		"ui": {
			WorkUnits:  5,
			Complexity: ComplexityMedium,
		},
		"payments": {
			Dependencies: []string{"auth"},
			WorkUnits:    8,
			Complexity:   ComplexityHigh,
			RequiredAPIs: []string{"stripe"},
			DataEntities: []string{"payments", "subscriptions"},
		},
		"notifications": {
			Dependencies: []string{"auth"},
			WorkUnits:    3,
			Complexity:   ComplexityLow,
			RequiredAPIs: []string{"sendgrid"},
		},
		"search": {
			Dependencies: []string{"database"},
			WorkUnits:    4,
			Complexity:   ComplexityMedium,
		},
		"file-uploads": {
			Dependencies: []string{"auth"},
			WorkUnits:    3,
			Complexity:   ComplexityLow,
			RequiredAPIs: []string{"s3"},
		},
		"admin": {
			Dependencies: []string{"auth"},
			WorkUnits:    5,
			Complexity:   ComplexityMedium,
		},
	})
}
