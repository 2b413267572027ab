package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/pkg/store"
	"github.com/OFFIS-RIT/idisland/pkg/store/storetest"
)

func newStorage(t *testing.T) *GraphFileStorage {
	t.Helper()
	s, err := NewGraphFileStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestGraphFileStorage(t *testing.T) {
	storetest.RunGraphStorage(t, newStorage(t))
}

func TestGraphFileStorageSimilar(t *testing.T) {
	storetest.RunSimilarIdentityFinder(t, newStorage(t))
}

func TestGraphFileStorageLayout(t *testing.T) {
	root := t.TempDir()
	s, err := NewGraphFileStorage(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.SaveSnapshot(ctx, "g1", store.PhaseClean, storetest.SampleSnapshot()))
	require.NoError(t, s.SaveSnapshot(ctx, "g1", store.PhaseAnomalous, storetest.SampleSnapshot()))

	assert.FileExists(t, filepath.Join(root, "synthetic_data", "g1"+store.SnapshotExtension))
	assert.FileExists(t, filepath.Join(root, "anomalies_data", "g1"+store.SnapshotExtension))

	entries, err := os.ReadDir(filepath.Join(root, "synthetic_data"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestNewGraphFileStorageEmptyRoot(t *testing.T) {
	_, err := NewGraphFileStorage("")
	assert.Error(t, err)
}
