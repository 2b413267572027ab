package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

var snapshotTables = []string{"graph_phases", "graph_nodes", "graph_edges", "graph_islands", "graph_anomalies"}

// A graph_phases row marks a saved phase, so an empty snapshot still exists.
const savePhaseSQL = `
INSERT INTO graph_phases (graph_id, phase, nodes, edges, anomalies, saved_at)
VALUES ($1, $2, $3, $4, $5, now())`

func (s *GraphDBStorage) copyRows(ctx context.Context, tx pgxv5.Tx, table string, columns []string, rows [][]any) error {
	return store.ChunkRange(len(rows), s.chunkSize, func(start, end int) error {
		n, err := tx.CopyFrom(ctx, pgxv5.Identifier{table}, columns, pgxv5.CopyFromRows(rows[start:end]))
		if err != nil {
			return fmt.Errorf("failed to copy into %s: %w", table, err)
		}
		if int(n) != end-start {
			return fmt.Errorf("copied %d of %d rows into %s", n, end-start, table)
		}
		return nil
	})
}

// SaveSnapshot replaces the stored snapshot of graphID in phase.
func (s *GraphDBStorage) SaveSnapshot(ctx context.Context, graphID string, phase store.Phase, snap common.Snapshot) error {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return err
	}

	nodes := make([][]any, 0, len(snap.Nodes))
	for i, n := range snap.Nodes {
		row, err := nodeRow(graphID, phase, i, n)
		if err != nil {
			return err
		}
		nodes = append(nodes, row)
	}
	edges := make([][]any, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		edges = append(edges, edgeRow(graphID, phase, e))
	}
	anomalies := make([][]any, 0, len(snap.Anomalies))
	for i, a := range snap.Anomalies {
		anomalies = append(anomalies, anomalyRow(graphID, phase, i, a))
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range snapshotTables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE graph_id = $1 AND phase = $2", graphID, string(phase)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := s.copyRows(ctx, tx, "graph_nodes", nodeColumns, nodes); err != nil {
		return err
	}
	if err := s.copyRows(ctx, tx, "graph_edges", edgeColumns, edges); err != nil {
		return err
	}
	if err := s.copyRows(ctx, tx, "graph_islands", islandColumns, islandRows(graphID, phase, snap.Islands)); err != nil {
		return err
	}
	if err := s.copyRows(ctx, tx, "graph_anomalies", anomalyColumns, anomalies); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, savePhaseSQL, graphID, string(phase), len(nodes), len(edges), len(anomalies)); err != nil {
		return fmt.Errorf("failed to record phase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.Debug("[Store] Saved snapshot", "graph", graphID, "phase", phase, "nodes", len(nodes), "edges", len(edges))
	return nil
}

// LoadSnapshot reads a snapshot back in its original node, edge, island and
// anomaly order.
func (s *GraphDBStorage) LoadSnapshot(ctx context.Context, graphID string, phase store.Phase) (common.Snapshot, error) {
	if err := store.ValidateKey(graphID, phase); err != nil {
		return common.Snapshot{}, err
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return common.Snapshot{}, err
	}
	defer tx.Rollback(ctx)

	var nodeCount int32
	err = tx.QueryRow(ctx, "SELECT nodes FROM graph_phases WHERE graph_id = $1 AND phase = $2", graphID, string(phase)).Scan(&nodeCount)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.Snapshot{}, fmt.Errorf("%w: %s/%s", store.ErrNotFound, graphID, phase)
	}
	if err != nil {
		return common.Snapshot{}, fmt.Errorf("failed to query phase: %w", err)
	}

	nodes, err := loadNodes(ctx, tx, graphID, phase, int(nodeCount))
	if err != nil {
		return common.Snapshot{}, err
	}

	edges, err := loadEdges(ctx, tx, graphID, phase)
	if err != nil {
		return common.Snapshot{}, err
	}
	islands, err := loadIslands(ctx, tx, graphID, phase)
	if err != nil {
		return common.Snapshot{}, err
	}
	anomalies, err := loadAnomalies(ctx, tx, graphID, phase)
	if err != nil {
		return common.Snapshot{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return common.Snapshot{}, err
	}
	return common.Snapshot{Nodes: nodes, Edges: edges, Islands: islands, Anomalies: anomalies}, nil
}

func loadNodes(ctx context.Context, tx pgxv5.Tx, graphID string, phase store.Phase, count int) ([]common.Node, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, kind, name, age, date_of_birth, nationality, doc_type, doc_number, event_type, event_date
		FROM graph_nodes
		WHERE graph_id = $1 AND phase = $2
		ORDER BY seq`, graphID, string(phase))
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]common.Node, 0, count)
	for rows.Next() {
		var r nodeRecord
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Name, &r.Age, &r.DateOfBirth, &r.Nationality,
			&r.DocType, &r.DocNumber, &r.EventType, &r.EventDate,
		); err != nil {
			return nil, err
		}
		n, err := r.node()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func loadEdges(ctx context.Context, tx pgxv5.Tx, graphID string, phase store.Phase) ([]common.Edge, error) {
	rows, err := tx.Query(ctx, `
		SELECT seq, from_id, to_id, type
		FROM graph_edges
		WHERE graph_id = $1 AND phase = $2
		ORDER BY seq`, graphID, string(phase))
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]common.Edge, 0)
	for rows.Next() {
		var e common.Edge
		var seq int32
		var typ string
		if err := rows.Scan(&seq, &e.From, &e.To, &typ); err != nil {
			return nil, err
		}
		e.Seq = int(seq)
		e.Type = common.EdgeType(typ)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func loadIslands(ctx context.Context, tx pgxv5.Tx, graphID string, phase store.Phase) ([]common.Island, error) {
	rows, err := tx.Query(ctx, `
		SELECT island_idx, identity_id
		FROM graph_islands
		WHERE graph_id = $1 AND phase = $2
		ORDER BY island_idx, position`, graphID, string(phase))
	if err != nil {
		return nil, fmt.Errorf("failed to query islands: %w", err)
	}
	defer rows.Close()

	indices := make([]int, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var idx int32
		var id string
		if err := rows.Scan(&idx, &id); err != nil {
			return nil, err
		}
		indices = append(indices, int(idx))
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assembleIslands(indices, ids)
}

func loadAnomalies(ctx context.Context, tx pgxv5.Tx, graphID string, phase store.Phase) ([]common.AnomalyLabel, error) {
	rows, err := tx.Query(ctx, `
		SELECT kind, island_idx, source_id, node_id, target_id, fallback
		FROM graph_anomalies
		WHERE graph_id = $1 AND phase = $2
		ORDER BY seq`, graphID, string(phase))
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer rows.Close()

	var labels []common.AnomalyLabel
	for rows.Next() {
		var a common.AnomalyLabel
		var kind string
		var island int32
		var node *string
		if err := rows.Scan(&kind, &island, &a.Source, &node, &a.Target, &a.Fallback); err != nil {
			return nil, err
		}
		a.Kind = common.AnomalyKind(kind)
		a.Island = int(island)
		a.Node = deref(node)
		labels = append(labels, a)
	}
	return labels, rows.Err()
}

// DeleteGraph removes both phases of graphID.
func (s *GraphDBStorage) DeleteGraph(ctx context.Context, graphID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range snapshotTables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE graph_id = $1", graphID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}
