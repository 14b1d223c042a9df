// Package rollback provides pre-phase snapshots of the artifact set and
// best-effort restoration when a phase fails.
//
// The registry is a small transactional store owned by a single run: create
// it with the run, discard it when the run ends. Points never leak across
// runs.
package rollback

import (
	"fmt"
	"time"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/errors"
)

// FileSnapshot captures one artifact at snapshot time.
type FileSnapshot struct {
	Path    string `json:"path"`
	Content string `json:"content"`

	// Fingerprint is the blake3 hash of the content at snapshot time
	Fingerprint string `json:"fingerprint"`

	// Existed records whether the file existed before the phase. Snapshots
	// are taken from the current artifact set, so this is always true:
	// restoration is restore-only and never deletes artifacts a phase
	// created. The delete path is kept in RollbackResult for completeness
	// but FilesDeleted stays 0.
	Existed bool `json:"existed"`
}

// Point is an immutable pre-phase snapshot keyed by phase id.
type Point struct {
	PhaseID   string         `json:"phase_id"`
	CreatedAt time.Time      `json:"created_at"`
	Files     []FileSnapshot `json:"files"`

	// DatabaseState is an opaque descriptor of database state at snapshot
	// time, handed to the best-effort database rollback
	DatabaseState string `json:"database_state"`
}

// Result reports the outcome of one rollback attempt.
type Result struct {
	Success       bool     `json:"success"`
	FilesRestored int      `json:"files_restored"`
	FilesDeleted  int      `json:"files_deleted"`
	Errors        []string `json:"errors,omitempty"`
}

// RestoreFunc applies one restored artifact to the caller's artifact set.
type RestoreFunc func(artifact.Artifact) error

// Manager is the per-run rollback point registry.
type Manager struct {
	points map[string]*Point
}

// NewManager creates an empty registry for one orchestration run.
func NewManager() *Manager {
	return &Manager{points: make(map[string]*Point)}
}

// CreateRollbackPoint snapshots every current artifact and stores the point
// under the phase id, overwriting any prior point for that id. There is no
// history per phase.
func (m *Manager) CreateRollbackPoint(phaseID string, current []artifact.Artifact) *Point {
	point := &Point{
		PhaseID:       phaseID,
		CreatedAt:     time.Now(),
		Files:         make([]FileSnapshot, 0, len(current)),
		DatabaseState: fmt.Sprintf("pre-%s", phaseID),
	}

	for _, a := range current {
		point.Files = append(point.Files, FileSnapshot{
			Path:        a.Path,
			Content:     a.Content,
			Fingerprint: a.Fingerprint(),
			Existed:     true,
		})
	}

	m.points[phaseID] = point
	return point
}

// Point returns the stored point for a phase id, or nil.
func (m *Manager) Point(phaseID string) *Point {
	return m.points[phaseID]
}

// Len returns the number of stored points.
func (m *Manager) Len() int {
	return len(m.points)
}

// Rollback restores the snapshot for the given phase through the supplied
// restore function. A missing point fails immediately. Restore failures are
// captured into the result rather than returned; the consumed point is
// deleted regardless of outcome.
func (m *Manager) Rollback(phaseID string, restore RestoreFunc) *Result {
	result := &Result{}

	point, ok := m.points[phaseID]
	if !ok {
		result.Errors = append(result.Errors, errors.NewNoRollbackPointError(phaseID).Message)
		return result
	}
	defer delete(m.points, phaseID)

	for _, snap := range point.Files {
		if !snap.Existed {
			// Unreachable today: snapshots only record pre-existing files.
			result.FilesDeleted++
			continue
		}
		if restore == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("no restore target for %s", snap.Path))
			continue
		}
		if err := restore(artifact.Artifact{Path: snap.Path, Content: snap.Content}); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to restore %s: %v", snap.Path, err))
			continue
		}
		result.FilesRestored++
	}

	if err := m.rollbackDatabase(point.DatabaseState); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("database rollback: %v", err))
	}

	result.Success = len(result.Errors) == 0
	return result
}

// rollbackDatabase attempts to revert database state to the snapshot's
// descriptor. Durable state lives behind an external persistence store, so
// this stays a best-effort no-op in-process.
func (m *Manager) rollbackDatabase(state string) error {
	_ = state
	return nil
}

// Discard deletes the point for a phase after that phase succeeds.
func (m *Manager) Discard(phaseID string) {
	delete(m.points, phaseID)
}

// ClearAll discards every stored point, typically after a fully successful
// multi-phase run.
func (m *Manager) ClearAll() {
	m.points = make(map[string]*Point)
}
