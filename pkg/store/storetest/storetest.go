// Package storetest holds a shared conformance suite for GraphStorage
// implementations.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

// SampleSnapshot returns a small two-island snapshot with parallel edges and
// one anomaly label.
func SampleSnapshot() common.Snapshot {
	nodes := []common.Node{
		common.Identity{ID: "a1", Name: "Jean Dupont", Age: 33, DateOfBirth: "15/06/1990", Nationality: "FRA"},
		common.Identity{ID: "a2", Name: "Jean Pierre Dupont", Age: 33, DateOfBirth: "15/06/1990", Nationality: "FRA"},
		common.Identity{ID: "b1", Name: "Anna Meyer", Age: 41, DateOfBirth: "02/11/1982", Nationality: "DEU"},
		common.Identity{ID: "b2", Name: "Jeanne Dupond", Age: 33, DateOfBirth: "15/06/1990", Nationality: "FRA"},
		common.Reference{ID: "r1", DocType: common.DocPassport, DocNumber: "123-45-6789"},
		common.Event{ID: "e1", EventType: common.EventBiometricVerification, EventDate: "2020-03-01"},
	}
	edges := []common.Edge{
		{Seq: 0, From: "a1", To: "a2", Type: common.EdgeIdentityEquivalence},
		{Seq: 1, From: "a1", To: "a2", Type: common.EdgeIdentityEquivalence},
		{Seq: 2, From: "a2", To: "r1", Type: common.EdgeCitedBy},
		{Seq: 3, From: "b1", To: "e1", Type: common.EdgeImmigrationStatusLinked},
		{Seq: 4, From: "b1", To: "b2", Type: common.EdgeIdentityEquivalence},
		{Seq: 5, From: "a1", To: "b2", Type: common.EdgeIdentityEquivalence},
	}
	return common.Snapshot{
		Nodes:   nodes,
		Edges:   edges,
		Islands: []common.Island{{"a1", "a2"}, {"b1", "b2"}},
		Anomalies: []common.AnomalyLabel{
			{Kind: common.AnomalyMislinkedIdentity, Island: 0, Source: "a1", Target: "b2"},
		},
	}
}

// RunGraphStorage exercises save, load, overwrite and delete on s.
func RunGraphStorage(t *testing.T, s store.GraphStorage) {
	t.Helper()
	ctx := context.Background()
	snap := SampleSnapshot()

	_, err := s.LoadSnapshot(ctx, "missing", store.PhaseClean)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveSnapshot(ctx, "g1", store.PhaseAnomalous, snap))
	got, err := s.LoadSnapshot(ctx, "g1", store.PhaseAnomalous)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	want, err := snap.Graph()
	require.NoError(t, err)
	rebuilt, err := got.Graph()
	require.NoError(t, err)
	assert.Equal(t, want.Edges(), rebuilt.Edges())

	_, err = s.LoadSnapshot(ctx, "g1", store.PhaseClean)
	assert.ErrorIs(t, err, store.ErrNotFound)

	clean := snap
	clean.Edges = snap.Edges[:5]
	clean.Anomalies = nil
	require.NoError(t, s.SaveSnapshot(ctx, "g1", store.PhaseClean, clean))
	got, err = s.LoadSnapshot(ctx, "g1", store.PhaseClean)
	require.NoError(t, err)
	assert.Len(t, got.Edges, 5)
	assert.Empty(t, got.Anomalies)

	require.Error(t, s.SaveSnapshot(ctx, "../escape", store.PhaseClean, snap))
	require.Error(t, s.SaveSnapshot(ctx, "g1", store.Phase("raw"), snap))

	require.NoError(t, s.DeleteGraph(ctx, "g1"))
	for _, phase := range store.Phases {
		_, err = s.LoadSnapshot(ctx, "g1", phase)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}

	// A run over zero islands saves an empty snapshot, which must still load.
	require.NoError(t, s.SaveSnapshot(ctx, "g0", store.PhaseClean, common.Snapshot{}))
	empty, err := s.LoadSnapshot(ctx, "g0", store.PhaseClean)
	require.NoError(t, err)
	assert.Empty(t, empty.Nodes)
	assert.Empty(t, empty.Edges)
	assert.Empty(t, empty.Islands)
	assert.Empty(t, empty.Anomalies)
	_, err = s.LoadSnapshot(ctx, "g0", store.PhaseAnomalous)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, s.DeleteGraph(ctx, "g0"))
	_, err = s.LoadSnapshot(ctx, "g0", store.PhaseClean)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// RunSimilarIdentityFinder checks ranking on the sample snapshot.
func RunSimilarIdentityFinder(t *testing.T, s interface {
	store.GraphStorage
	store.SimilarIdentityFinder
}) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveSnapshot(ctx, "g2", store.PhaseAnomalous, SampleSnapshot()))

	hits, err := s.FindSimilarIdentities(ctx, "g2", store.PhaseAnomalous, "a1", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.NotEqual(t, "a1", h.Identity.ID)
		assert.NotEqual(t, "b1", h.Identity.ID, "unrelated name ranked in top hits")
	}
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)

	_, err = s.FindSimilarIdentities(ctx, "g2", store.PhaseAnomalous, "nobody", 2)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
