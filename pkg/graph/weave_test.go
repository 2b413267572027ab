package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/random"
)

func TestAddEdgesWithinIslandSupportCardinality(t *testing.T) {
	tests := []struct {
		name     string
		variants int
		size     int
	}{
		{name: "single identity", variants: 0, size: 1},
		{name: "five identities", variants: 4, size: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newTestGenerator(t, "FR")
			src := random.New(21)
			names := gen.provider.Sampler(gen.provider.LocaleFor("FR"), src)

			island, err := gen.CreateIdentityIsland(src, names, "Jean Dupont", "15/06/1990", "FRA", tt.variants)
			require.NoError(t, err)
			require.Len(t, island, tt.size)

			support, err := gen.AddEdgesWithinIsland(src, island)
			require.NoError(t, err)

			assert.Len(t, support.References, ReferencesPerIsland)
			assert.Len(t, support.Events, EventsPerIsland)
			assert.Equal(t, 5, gen.Graph().CountKind(common.KindReference))
			assert.Equal(t, 2, gen.Graph().CountKind(common.KindEvent))
			assert.Equal(t, tt.size, gen.Graph().CountKind(common.KindIdentity))
		})
	}
}

func TestAddEdgesWithinIslandTargetsStayInPools(t *testing.T) {
	gen := newTestGenerator(t, "FR")
	src := random.New(99)
	names := gen.provider.Sampler(gen.provider.LocaleFor("FR"), src)

	island, err := gen.CreateIdentityIsland(src, names, "Jean Dupont", "15/06/1990", "FRA", 4)
	require.NoError(t, err)
	constructionEdges := gen.Graph().EdgeCount()

	support, err := gen.AddEdgesWithinIsland(src, island)
	require.NoError(t, err)

	inPool := func(pool []string, id string) bool {
		for _, p := range pool {
			if p == id {
				return true
			}
		}
		return false
	}

	woven := gen.Graph().Edges()[constructionEdges:]
	require.NotEmpty(t, woven)
	assert.LessOrEqual(t, len(woven), len(island)*len(relationshipRules))

	for _, e := range woven {
		require.True(t, island.Contains(e.From), "edge from outside island: %+v", e)
		switch e.Type {
		case common.EdgeIncludedIn, common.EdgeIdentityEquivalence,
			common.EdgeManualIdentityOverride, common.EdgeSameApplication:
			assert.True(t, island.Contains(e.To), "%s must target an island member", e.Type)
		case common.EdgeCitedBy, common.EdgeIdentifiedThroughBiometrics:
			assert.True(t, inPool(support.References, e.To), "%s must target a reference", e.Type)
		case common.EdgeImmigrationStatusLinked:
			assert.True(t, inPool(support.Events, e.To), "%s must target an event", e.Type)
		default:
			t.Fatalf("unexpected edge type %s", e.Type)
		}
	}

	for _, id := range support.References {
		n, ok := gen.Graph().Node(id)
		require.True(t, ok)
		ref := n.(common.Reference)
		assert.Contains(t, common.DocTypes, ref.DocType)
		assert.Equal(t, "123-45-6789", ref.DocNumber)
	}
	for _, id := range support.Events {
		n, ok := gen.Graph().Node(id)
		require.True(t, ok)
		assert.Equal(t, common.EventBiometricVerification, n.(common.Event).EventType)
	}
}

func TestAddEdgesWithinIslandIsDeterministic(t *testing.T) {
	build := func() []common.Edge {
		gen := newTestGenerator(t, "FR")
		src := random.New(4)
		names := gen.provider.Sampler(gen.provider.LocaleFor("FR"), src)
		island, err := gen.CreateIdentityIsland(src, names, "Jean Dupont", "15/06/1990", "FRA", 3)
		require.NoError(t, err)
		_, err = gen.AddEdgesWithinIsland(src, island)
		require.NoError(t, err)
		return gen.Graph().Edges()
	}
	assert.Equal(t, build(), build())
}

func TestAddEdgesWithinIslandRejectsUnknownMembers(t *testing.T) {
	gen := newTestGenerator(t, "FR")

	_, err := gen.AddEdgesWithinIsland(random.New(1), common.Island{})
	require.Error(t, err)

	_, err = gen.AddEdgesWithinIsland(random.New(1), common.Island{"missing"})
	require.ErrorIs(t, err, common.ErrNodeNotFound)
	assert.Zero(t, gen.Graph().NodeCount())
}
