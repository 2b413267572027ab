package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	require.NoError(t, g.AddNode(Identity{ID: "i1", Name: "Jean Dupont", Age: 33, DateOfBirth: "15/06/1990", Nationality: "FRA"}))
	require.NoError(t, g.AddNode(Identity{ID: "i2", Name: "Jean Paul Dupont", Age: 33, DateOfBirth: "15/06/1990", Nationality: "FRA"}))
	require.NoError(t, g.AddNode(Reference{ID: "r1", DocType: DocPassport, DocNumber: "123-45-6789"}))
	require.NoError(t, g.AddNode(Event{ID: "e1", EventType: EventBiometricVerification, EventDate: "2020-03-01"}))
	return g
}

func TestGraphAddNodeRejectsDuplicates(t *testing.T) {
	g := sampleGraph(t)
	err := g.AddNode(Identity{ID: "i1"})
	require.ErrorIs(t, err, ErrNodeExists)
	require.Error(t, g.AddNode(Reference{}))
	assert.Equal(t, 4, g.NodeCount())
}

func TestGraphKeepsParallelEdges(t *testing.T) {
	g := sampleGraph(t)

	for range 2 {
		_, err := g.AddEdge("i1", "i2", EdgeIdentityEquivalence)
		require.NoError(t, err)
	}
	_, err := g.AddEdge("i1", "i2", EdgeSameApplication)
	require.NoError(t, err)
	_, err = g.AddEdge("i1", "i1", EdgeIncludedIn)
	require.NoError(t, err)

	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, 2, g.CountEdges(EdgeIdentityEquivalence))
	assert.Len(t, g.OutEdges("i1"), 4)
	assert.Len(t, g.InEdges("i2"), 3)
	assert.Len(t, g.InEdges("i1"), 1)

	for i, e := range g.Edges() {
		assert.Equal(t, i, e.Seq)
	}
}

func TestGraphAddEdgeValidates(t *testing.T) {
	g := sampleGraph(t)

	_, err := g.AddEdge("i1", "missing", EdgeCitedBy)
	require.ErrorIs(t, err, ErrNodeNotFound)
	_, err = g.AddEdge("missing", "r1", EdgeCitedBy)
	require.ErrorIs(t, err, ErrNodeNotFound)
	_, err = g.AddEdge("i1", "r1", EdgeType("KNOWS"))
	require.Error(t, err)
	assert.Zero(t, g.EdgeCount())
}

func TestGraphLookups(t *testing.T) {
	g := sampleGraph(t)

	identity, ok := g.Identity("i2")
	require.True(t, ok)
	assert.Equal(t, "Jean Paul Dupont", identity.Name)

	_, ok = g.Identity("r1")
	assert.False(t, ok)

	_, err := g.Identities([]string{"i1", "r1"})
	require.ErrorIs(t, err, ErrNodeNotFound)

	assert.Equal(t, 2, g.CountKind(KindIdentity))
	assert.Equal(t, 1, g.CountKind(KindReference))
	assert.Equal(t, 1, g.CountKind(KindEvent))
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	for _, e := range []struct {
		from, to string
		typ      EdgeType
	}{
		{"i1", "i2", EdgeIdentityEquivalence},
		{"i1", "i2", EdgeIdentityEquivalence},
		{"i2", "r1", EdgeCitedBy},
		{"i2", "e1", EdgeImmigrationStatusLinked},
	} {
		_, err := g.AddEdge(e.from, e.to, e.typ)
		require.NoError(t, err)
	}
	islands := []Island{{"i1", "i2"}}
	labels := []AnomalyLabel{{Kind: AnomalyIncorrectEvent, Source: "i2", Node: "e1", Target: "e1"}}

	snap := NewSnapshot(g, islands, labels)
	islands[0][0] = "mutated"

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)
	assert.Equal(t, "i1", decoded.Islands[0].Base())

	rebuilt, err := decoded.Graph()
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), rebuilt.Nodes())
	assert.Equal(t, g.Edges(), rebuilt.Edges())
}

func TestSnapshotRejectsUnknownKind(t *testing.T) {
	var s Snapshot
	err := json.Unmarshal([]byte(`{"nodes":[{"kind":"Vehicle","id":"v1"}],"edges":[],"islands":[]}`), &s)
	require.Error(t, err)
}

func TestSnapshotGraphRejectsDanglingEdges(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{Identity{ID: "i1"}},
		Edges: []Edge{{From: "i1", To: "gone", Type: EdgeCitedBy}},
	}
	_, err := s.Graph()
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestIsland(t *testing.T) {
	island := Island{"a", "b"}
	assert.Equal(t, "a", island.Base())
	assert.True(t, island.Contains("b"))
	assert.False(t, island.Contains("c"))
	assert.Empty(t, Island{}.Base())
	assert.True(t, EdgeCitedBy.Valid())
}
