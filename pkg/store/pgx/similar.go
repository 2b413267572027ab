package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

const similarIdentitiesSQL = `
SELECT n.id, n.name, n.age, n.date_of_birth, n.nationality,
       1 - (n.name_embedding <=> $4) AS score
FROM graph_nodes n
WHERE n.graph_id = $1
  AND n.phase = $2
  AND n.kind = 'Identity'
  AND n.id <> $3
ORDER BY n.name_embedding <=> $4, n.seq
LIMIT $5`

// FindSimilarIdentities ranks the identities of a stored graph by cosine
// distance between name vectors, closest first.
func (s *GraphDBStorage) FindSimilarIdentities(
	ctx context.Context,
	graphID string,
	phase store.Phase,
	identityID string,
	limit int,
) ([]store.SimilarIdentity, error) {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var embedding pgvector.Vector
	err := s.conn.QueryRow(ctx, `
		SELECT name_embedding
		FROM graph_nodes
		WHERE graph_id = $1 AND phase = $2 AND id = $3 AND kind = 'Identity'`,
		graphID, string(phase), identityID,
	).Scan(&embedding)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("%w: identity %s", store.ErrNotFound, identityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load name embedding: %w", err)
	}

	rows, err := s.conn.Query(ctx, similarIdentitiesSQL, graphID, string(phase), identityID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar identities: %w", err)
	}
	defer rows.Close()

	hits := make([]store.SimilarIdentity, 0, limit)
	for rows.Next() {
		var id common.Identity
		var age int32
		var score float64
		if err := rows.Scan(&id.ID, &id.Name, &age, &id.DateOfBirth, &id.Nationality, &score); err != nil {
			return nil, err
		}
		id.Age = int(age)
		hits = append(hits, store.SimilarIdentity{Identity: id, Score: score})
	}
	return hits, rows.Err()
}
