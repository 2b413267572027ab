// Package file stores snapshots as zstd-compressed JSON files. Clean
// snapshots live under synthetic_data/ and anomalous snapshots under
// anomalies_data/ below the root directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

var phaseDirs = map[store.Phase]string{
	store.PhaseClean:     "synthetic_data",
	store.PhaseAnomalous: "anomalies_data",
}

// GraphFileStorage implements store.GraphStorage on a local directory.
type GraphFileStorage struct {
	root string
}

func NewGraphFileStorage(root string) (*GraphFileStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is empty")
	}
	for _, dir := range phaseDirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &GraphFileStorage{root: root}, nil
}

// Path returns the file backing the snapshot of graphID in phase.
func (s *GraphFileStorage) Path(graphID string, phase store.Phase) string {
	return filepath.Join(s.root, phaseDirs[phase], graphID+store.SnapshotExtension)
}

// SaveSnapshot writes to a temporary file and renames it into place, so
// readers never observe a partial snapshot.
func (s *GraphFileStorage) SaveSnapshot(ctx context.Context, graphID string, phase store.Phase, snap common.Snapshot) error {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return err
	}
	path := s.Path(graphID, phase)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := store.EncodeSnapshot(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	logger.Debug("[Store] Saved snapshot", "graph", graphID, "phase", phase, "path", path)
	return nil
}

func (s *GraphFileStorage) LoadSnapshot(ctx context.Context, graphID string, phase store.Phase) (common.Snapshot, error) {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return common.Snapshot{}, err
	}
	f, err := os.Open(s.Path(graphID, phase))
	if errors.Is(err, fs.ErrNotExist) {
		return common.Snapshot{}, fmt.Errorf("%w: %s/%s", store.ErrNotFound, graphID, phase)
	}
	if err != nil {
		return common.Snapshot{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return store.DecodeSnapshot(f)
}

func (s *GraphFileStorage) DeleteGraph(ctx context.Context, graphID string) error {
	for _, phase := range store.Phases {
		if err := store.ValidateKey(graphID, phase); err != nil {
			return err
		}
		err := os.Remove(s.Path(graphID, phase))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
	}
	return nil
}

func (s *GraphFileStorage) FindSimilarIdentities(
	ctx context.Context,
	graphID string,
	phase store.Phase,
	identityID string,
	limit int,
) ([]store.SimilarIdentity, error) {
	snap, err := s.LoadSnapshot(ctx, graphID, phase)
	if err != nil {
		return nil, err
	}
	return store.RankSimilarIdentities(snap, identityID, limit)
}
