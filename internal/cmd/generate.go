package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/feature"
)

// stubGenerator synthesizes artifact shells locally instead of calling a
// generation service. It is the default for dry runs; real deployments
// plug in a remote generator through the same interface.
type stubGenerator struct{}

func (stubGenerator) GenerateFeature(_ context.Context, f feature.Feature) ([]artifact.Artifact, error) {
	units := f.EstimatedWorkUnits
	if units < 1 {
		units = 1
	}

	out := make([]artifact.Artifact, 0, units)
	for i := 0; i < units; i++ {
		name := identifier(f.ID, i)
		out = append(out, artifact.Artifact{
			Path:    fmt.Sprintf("src/%s/%s.ts", f.ID, name),
			Content: fmt.Sprintf("export const %s = () => {}\n", name),
		})
	}
	return out, nil
}

func (stubGenerator) FillArtifact(_ context.Context, placeholder artifact.Artifact) (artifact.Artifact, error) {
	role := artifact.Classify(placeholder.Path)

	var content string
	switch role {
	case artifact.RoleUIUnit, artifact.RolePage:
		content = fmt.Sprintf("export default function %s() {}\n", componentName(placeholder.Path))
	default:
		content = fmt.Sprintf("export const %s = {}\n", componentName(placeholder.Path))
	}

	return artifact.Artifact{Path: placeholder.Path, Content: content}, nil
}

// identifier derives a valid source identifier from a feature id.
func identifier(id string, n int) string {
	clean := strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(id)
	return fmt.Sprintf("%s_%d", clean, n)
}

// componentName derives an exported name from an artifact path.
func componentName(path string) string {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	base = strings.NewReplacer("-", "_", ".", "_").Replace(base)
	if base == "" {
		return "Artifact"
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
