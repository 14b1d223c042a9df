// Package artifact defines generated build artifacts and their role
// classification, used by the planner's artifact-only mode and by the
// executor's role-specific validation rules.
package artifact

import (
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// Artifact is a single generated file: a path and its content.
type Artifact struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// Fingerprint returns a short blake3 content hash, used to identify
// artifact versions in snapshots and results.
func (a Artifact) Fingerprint() string {
	sum := blake3.Sum256([]byte(a.Content))
	return fmt.Sprintf("%x", sum[:8])
}

// Role classifies an artifact by what it contributes to the application.
type Role string

const (
	// RoleFoundation covers configuration, setup and schema files
	RoleFoundation Role = "foundation"

	// RoleUtility covers shared helpers and library code
	RoleUtility Role = "utility"

	// RoleBehavior covers hooks, state and other behavioral units
	RoleBehavior Role = "behavior"

	// RoleUIUnit covers standalone interface components
	RoleUIUnit Role = "ui"

	// RolePage covers routes and pages
	RolePage Role = "page"

	// RoleEndpoint covers integration endpoints
	RoleEndpoint Role = "endpoint"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Classify assigns a role based on the artifact path. Classification is
// ordered: more specific locations win over generic ones, and anything
// unrecognized is treated as a UI unit so it is never dropped from a plan.
func Classify(path string) Role {
	p := strings.ToLower(path)

	switch {
	case isFoundationPath(p):
		return RoleFoundation
	case strings.Contains(p, "/api/"), strings.HasPrefix(p, "api/"),
		strings.Contains(p, "endpoint"), strings.Contains(p, "handler"):
		return RoleEndpoint
	case strings.Contains(p, "/pages/"), strings.HasPrefix(p, "pages/"),
		strings.Contains(p, "/routes/"), strings.HasPrefix(p, "routes/"):
		return RolePage
	case strings.Contains(p, "/hooks/"), strings.HasPrefix(p, "hooks/"),
		strings.Contains(p, "/store/"), strings.Contains(p, "usestate"),
		strings.HasPrefix(lastSegment(p), "use"):
		return RoleBehavior
	case strings.Contains(p, "/lib/"), strings.HasPrefix(p, "lib/"),
		strings.Contains(p, "/utils/"), strings.HasPrefix(p, "utils/"),
		strings.Contains(p, "helper"):
		return RoleUtility
	default:
		return RoleUIUnit
	}
}

func isFoundationPath(p string) bool {
	base := lastSegment(p)

	for _, name := range []string{
		"package.json", "tsconfig.json", "go.mod", "dockerfile",
		"tailwind.config.js", "vite.config.ts", "next.config.js",
	} {
		if base == name {
			return true
		}
	}

	for _, marker := range []string{"config", "schema", "migration", "setup", ".env"} {
		if strings.Contains(base, marker) {
			return true
		}
	}

	return strings.Contains(p, "/db/") || strings.HasPrefix(p, "db/")
}

func lastSegment(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
