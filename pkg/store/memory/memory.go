// Package memory provides an in-process GraphStorage used by tests and the
// CLI dry-run path.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

type key struct {
	graphID string
	phase   store.Phase
}

// GraphMemoryStorage keeps encoded snapshots in a map. Stored snapshots are
// isolated copies: mutating a saved or loaded snapshot does not affect the
// storage.
type GraphMemoryStorage struct {
	mu        sync.RWMutex
	snapshots map[key][]byte
}

func NewGraphMemoryStorage() *GraphMemoryStorage {
	return &GraphMemoryStorage{snapshots: make(map[key][]byte)}
}

func (s *GraphMemoryStorage) SaveSnapshot(ctx context.Context, graphID string, phase store.Phase, snap common.Snapshot) error {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return err
	}
	data, err := store.MarshalSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key{graphID, phase}] = data
	return nil
}

func (s *GraphMemoryStorage) LoadSnapshot(ctx context.Context, graphID string, phase store.Phase) (common.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.snapshots[key{graphID, phase}]
	s.mu.RUnlock()
	if !ok {
		return common.Snapshot{}, fmt.Errorf("%w: %s/%s", store.ErrNotFound, graphID, phase)
	}
	return store.UnmarshalSnapshot(data)
}

func (s *GraphMemoryStorage) DeleteGraph(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, phase := range store.Phases {
		delete(s.snapshots, key{graphID, phase})
	}
	return nil
}

func (s *GraphMemoryStorage) FindSimilarIdentities(
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
