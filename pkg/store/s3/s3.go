// Package s3 stores snapshots and N-Quads exports in an S3 bucket under
// graphs/<graph id>/.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/idisland/internal/storage"
	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/export"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

const (
	snapshotContentType = "application/zstd"
	nquadsContentType   = "application/n-quads"
	nquadsExtension     = ".nq"
)

// GraphS3Storage implements store.GraphStorage on an S3 bucket.
type GraphS3Storage struct {
	bucket *storage.Bucket
	prefix string
}

type GraphS3StorageOption func(*GraphS3Storage)

// WithPrefix places all objects below prefix instead of "graphs".
func WithPrefix(prefix string) GraphS3StorageOption {
	return func(s *GraphS3Storage) {
		s.prefix = prefix
	}
}

func NewGraphS3Storage(bucket *storage.Bucket, opts ...GraphS3StorageOption) *GraphS3Storage {
	s := &GraphS3Storage{bucket: bucket, prefix: "graphs"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *GraphS3Storage) graphPrefix(graphID string) string {
	return s.prefix + "/" + graphID + "/"
}

// SnapshotKey returns the object key of a snapshot.
func (s *GraphS3Storage) SnapshotKey(graphID string, phase store.Phase) string {
	return s.graphPrefix(graphID) + string(phase) + store.SnapshotExtension
}

// NQuadsKey returns the object key of an N-Quads export.
func (s *GraphS3Storage) NQuadsKey(graphID string, phase store.Phase) string {
	return s.graphPrefix(graphID) + string(phase) + nquadsExtension
}

func (s *GraphS3Storage) SaveSnapshot(ctx context.Context, graphID string, phase store.Phase, snap common.Snapshot) error {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return err
	}
	data, err := store.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.bucket.Put(ctx, s.SnapshotKey(graphID, phase), data, snapshotContentType); err != nil {
		return err
	}
	logger.Debug("[Store] Uploaded snapshot", "graph", graphID, "phase", phase, "bytes", len(data))
	return nil
}

func (s *GraphS3Storage) LoadSnapshot(ctx context.Context, graphID string, phase store.Phase) (common.Snapshot, error) {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return common.Snapshot{}, err
	}
	data, err := s.bucket.Get(ctx, s.SnapshotKey(graphID, phase))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return common.Snapshot{}, fmt.Errorf("%w: %s/%s", store.ErrNotFound, graphID, phase)
	}
	if err != nil {
		return common.Snapshot{}, err
	}
	return store.UnmarshalSnapshot(data)
}

func (s *GraphS3Storage) DeleteGraph(ctx context.Context, graphID string) error {
	if graphID == "" {
		return fmt.Errorf("graph id is empty")
	}
	return s.bucket.DeletePrefix(ctx, s.graphPrefix(graphID))
}

// SaveNQuads uploads the triples of snap for downstream visualization and
// returns the object key.
func (s *GraphS3Storage) SaveNQuads(ctx context.Context, graphID string, phase store.Phase, snap common.Snapshot) (string, error) {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return "", err
	}
	g, err := snap.Graph()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := export.WriteNQuads(&buf, export.Triples(g, export.DefaultBaseURI)); err != nil {
		return "", err
	}

	key := s.NQuadsKey(graphID, phase)
	if err := s.bucket.Put(ctx, key, buf.Bytes(), nquadsContentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *GraphS3Storage) FindSimilarIdentities(
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
