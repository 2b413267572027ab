package store

import (
	"fmt"
	"sort"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

// RankSimilarIdentities scores every other identity of snap against the
// identity with the given id by name vector cosine similarity and returns
// the best limit hits, highest score first. Ties keep node order.
func RankSimilarIdentities(snap common.Snapshot, identityID string, limit int) ([]SimilarIdentity, error) {
	var target *common.Identity
	for _, n := range snap.Nodes {
		if identity, ok := n.(common.Identity); ok && identity.ID == identityID {
			target = &identity
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: identity %s", ErrNotFound, identityID)
	}

	want := NameVector(target.Name)
	hits := make([]SimilarIdentity, 0)
	for _, n := range snap.Nodes {
		identity, ok := n.(common.Identity)
		if !ok || identity.ID == identityID {
			continue
		}
		hits = append(hits, SimilarIdentity{
			Identity: identity,
			Score:    CosineSimilarity(want, NameVector(identity.Name)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
