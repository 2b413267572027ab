package pgx

import (
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/common"
	"github.com/OFFIS-RIT/idisland/pkg/store"
)

var (
	nodeColumns = []string{
		"graph_id", "phase", "seq", "id", "kind",
		"name", "age", "date_of_birth", "nationality",
		"doc_type", "doc_number", "event_type", "event_date",
		"name_embedding",
	}
	edgeColumns    = []string{"graph_id", "phase", "seq", "from_id", "to_id", "type"}
	islandColumns  = []string{"graph_id", "phase", "island_idx", "position", "identity_id"}
	anomalyColumns = []string{
		"graph_id", "phase", "seq", "kind", "island_idx",
		"source_id", "node_id", "target_id", "fallback",
	}
)

// nodeRow flattens a node into the column order of nodeColumns. Only
// identities carry a name vector; other kinds store NULL.
func nodeRow(graphID string, phase store.Phase, seq int, n common.Node) ([]any, error) {
	row := []any{graphID, string(phase), seq, n.NodeID(), string(n.Kind())}
	switch v := n.(type) {
	case common.Identity:
		vec := pgvector.NewVector(store.NameVector(v.Name))
		return append(row,
			util.SanitizePostgresText(v.Name), v.Age, v.DateOfBirth, v.Nationality,
			nil, nil, nil, nil,
			&vec,
		), nil
	case common.Reference:
		return append(row,
			nil, nil, nil, nil,
			string(v.DocType), v.DocNumber, nil, nil,
			nil,
		), nil
	case common.Event:
		return append(row,
			nil, nil, nil, nil,
			nil, nil, string(v.EventType), v.EventDate,
			nil,
		), nil
	default:
		return nil, fmt.Errorf("unsupported node type %T", n)
	}
}

type nodeRecord struct {
	ID          string
	Kind        string
	Name        *string
	Age         *int32
	DateOfBirth *string
	Nationality *string
	DocType     *string
	DocNumber   *string
	EventType   *string
	EventDate   *string
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r nodeRecord) node() (common.Node, error) {
	switch common.NodeKind(r.Kind) {
	case common.KindIdentity:
		return common.Identity{
			ID:          r.ID,
			Name:        deref(r.Name),
			Age:         int(deref(r.Age)),
			DateOfBirth: deref(r.DateOfBirth),
			Nationality: deref(r.Nationality),
		}, nil
	case common.KindReference:
		return common.Reference{
			ID:        r.ID,
			DocType:   common.DocType(deref(r.DocType)),
			DocNumber: deref(r.DocNumber),
		}, nil
	case common.KindEvent:
		return common.Event{
			ID:        r.ID,
			EventType: common.EventType(deref(r.EventType)),
			EventDate: deref(r.EventDate),
		}, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q for %s", r.Kind, r.ID)
	}
}

func edgeRow(graphID string, phase store.Phase, e common.Edge) []any {
	return []any{graphID, string(phase), e.Seq, e.From, e.To, string(e.Type)}
}

func islandRows(graphID string, phase store.Phase, islands []common.Island) [][]any {
	rows := make([][]any, 0)
	for idx, island := range islands {
		for pos, id := range island {
			rows = append(rows, []any{graphID, string(phase), idx, pos, id})
		}
	}
	return rows
}

func anomalyRow(graphID string, phase store.Phase, seq int, a common.AnomalyLabel) []any {
	var node any
	if a.Node != "" {
		node = a.Node
	}
	return []any{graphID, string(phase), seq, string(a.Kind), a.Island, a.Source, node, a.Target, a.Fallback}
}

// assembleIslands rebuilds islands from (island_idx, position) ordered rows.
func assembleIslands(indices []int, ids []string) ([]common.Island, error) {
	islands := make([]common.Island, 0)
	for i, idx := range indices {
		switch {
		case idx == len(islands):
			islands = append(islands, common.Island{ids[i]})
		case idx == len(islands)-1:
			islands[idx] = append(islands[idx], ids[i])
		default:
			return nil, fmt.Errorf("island rows out of order at index %d", idx)
		}
	}
	return islands, nil
}
