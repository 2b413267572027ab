package store_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/store"
	"github.com/OFFIS-RIT/idisland/pkg/store/storetest"
)

func TestParsePhase(t *testing.T) {
	p, err := store.ParsePhase("")
	require.NoError(t, err)
	assert.Equal(t, store.PhaseAnomalous, p)

	p, err = store.ParsePhase("clean")
	require.NoError(t, err)
	assert.Equal(t, store.PhaseClean, p)

	_, err = store.ParsePhase("dirty")
	assert.Error(t, err)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, store.ValidateKey("V1StGXR8_Z5jdHi6B-myT", store.PhaseClean))
	for _, id := range []string{"", "a/b", "..", "a\\b", "a\nb"} {
		assert.Error(t, store.ValidateKey(id, store.PhaseClean), "%q", id)
	}
}

func TestSnapshotCodecRoundTrip(t *testing.T) {
	snap := storetest.SampleSnapshot()
	data, err := store.MarshalSnapshot(snap)
	require.NoError(t, err)

	got, err := store.UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = store.UnmarshalSnapshot([]byte("not zstd"))
	assert.Error(t, err)
}

func TestChunkRange(t *testing.T) {
	var spans [][2]int
	err := store.ChunkRange(7, 3, func(start, end int) error {
		spans = append(spans, [2]int{start, end})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 7}}, spans)

	calls := 0
	require.NoError(t, store.ChunkRange(0, 3, func(int, int) error { calls++; return nil }))
	assert.Zero(t, calls)

	stop := errors.New("stop")
	assert.ErrorIs(t, store.ChunkRange(5, 0, func(int, int) error { return stop }), stop)
}

func TestNameVector(t *testing.T) {
	v := store.NameVector("Jean Dupont")
	require.Len(t, v, store.NameVectorDims)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)

	assert.Equal(t, v, store.NameVector("  JEAN   Dupont "))
	assert.Equal(t, store.NameVector("Jose Garcia"), store.NameVector("José García"))
	assert.Equal(t, make([]float32, store.NameVectorDims), store.NameVector(""))

	near := store.CosineSimilarity(v, store.NameVector("Jean Pierre Dupont"))
	far := store.CosineSimilarity(v, store.NameVector("Yuki Tanaka"))
	assert.Greater(t, near, far)
	assert.InDelta(t, 1.0, store.CosineSimilarity(v, v), 1e-6)
	assert.Zero(t, store.CosineSimilarity(v, make([]float32, store.NameVectorDims)))
}

func TestRankSimilarIdentities(t *testing.T) {
	snap := storetest.SampleSnapshot()
	hits, err := store.RankSimilarIdentities(snap, "a1", 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	assert.Equal(t, "b1", hits[2].Identity.ID)

	hits, err = store.RankSimilarIdentities(snap, "a1", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = store.RankSimilarIdentities(snap, "r1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = store.RankSimilarIdentities(common.Snapshot{}, "a1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
