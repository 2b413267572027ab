package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

var ErrNotFound = errors.New("snapshot not found")

// Phase distinguishes the two outputs of a generation run.
type Phase string

const (
	// PhaseClean is the graph before anomaly injection.
	PhaseClean Phase = "clean"
	// PhaseAnomalous is the final graph with injected anomalies.
	PhaseAnomalous Phase = "anomalous"
)

// Phases lists every phase in persistence order.
var Phases = []Phase{PhaseClean, PhaseAnomalous}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhaseClean || p == PhaseAnomalous
}

// ParsePhase validates a phase name. An empty name selects PhaseAnomalous.
func ParsePhase(name string) (Phase, error) {
	if name == "" {
		return PhaseAnomalous, nil
	}
	p := Phase(name)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", name)
	}
	return p, nil
}

// GraphStorage persists whole snapshots keyed by graph id and phase.
// A snapshot loaded back must rebuild to a graph and island collection
// identical to the one saved, including edge multiplicity and order.
type GraphStorage interface {
	SaveSnapshot(ctx context.Context, graphID string, phase Phase, snap common.Snapshot) error
	LoadSnapshot(ctx context.Context, graphID string, phase Phase) (common.Snapshot, error)
	DeleteGraph(ctx context.Context, graphID string) error
}

// SimilarIdentity is one hit of a similar-identity lookup.
type SimilarIdentity struct {
	Identity common.Identity `json:"identity"`
	Score    float64         `json:"score"`
}

// SimilarIdentityFinder is implemented by storages that can rank the stored
// identities of a graph by name similarity to one of them.
type SimilarIdentityFinder interface {
	FindSimilarIdentities(
		ctx context.Context,
		graphID string,
		phase Phase,
		identityID string,
		limit int,
	) ([]SimilarIdentity, error)
}

// ValidateKey rejects graph ids that cannot be used as storage keys.
func ValidateKey(graphID string, phase Phase) error {
	if graphID == "" {
		return fmt.Errorf("graph id is empty")
	}
	for _, r := range graphID {
		if r == '/' || r == '\\' || r == '.' || r < 0x20 {
			return fmt.Errorf("graph id %q contains invalid characters", graphID)
		}
	}
	if !phase.Valid() {
		return fmt.Errorf("unknown phase %q", phase)
	}
	return nil
}
