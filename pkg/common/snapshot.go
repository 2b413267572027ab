package common

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serialization contract between the generator and any
// GraphStorage: the ordered node list, the ordered edge list, the island
// collection and the labels of injected anomalies. Each part round-trips on
// its own.
type Snapshot struct {
	Nodes     []Node         `json:"-"`
	Edges     []Edge         `json:"edges"`
	Islands   []Island       `json:"islands"`
	Anomalies []AnomalyLabel `json:"anomalies,omitempty"`
}

// NewSnapshot captures g and islands. Islands are copied so later mutation
// of the generator state does not leak into the snapshot.
func NewSnapshot(g *Graph, islands []Island, anomalies []AnomalyLabel) Snapshot {
	return Snapshot{
		Nodes:     g.Nodes(),
		Edges:     g.Edges(),
		Islands:   CloneIslands(islands),
		Anomalies: append([]AnomalyLabel(nil), anomalies...),
	}
}

// CloneIslands deep-copies an island collection.
func CloneIslands(islands []Island) []Island {
	if islands == nil {
		return nil
	}
	out := make([]Island, len(islands))
	for i, island := range islands {
		out[i] = append(Island(nil), island...)
	}
	return out
}

// Graph rebuilds the multigraph described by the snapshot. Edge sequence
// numbers are reassigned from list order, so a snapshot produced by
// NewSnapshot rebuilds to an identical graph.
func (s Snapshot) Graph() (*Graph, error) {
	g := NewGraph()
	for _, n := range s.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("failed to restore node: %w", err)
		}
	}
	for _, e := range s.Edges {
		if _, err := g.AddEdge(e.From, e.To, e.Type); err != nil {
			return nil, fmt.Errorf("failed to restore edge %d: %w", e.Seq, err)
		}
	}
	return g, nil
}

type nodeRecord struct {
	Kind        NodeKind  `json:"kind"`
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Age         int       `json:"age,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	DocType     DocType   `json:"doc_type,omitempty"`
	DocNumber   string    `json:"doc_number,omitempty"`
	EventType   EventType `json:"event_type,omitempty"`
	EventDate   string    `json:"event_date,omitempty"`
}

// toRecord flattens a node into a kind-tagged record.
func toRecord(n Node) (nodeRecord, error) {
	switch v := n.(type) {
	case Identity:
		return nodeRecord{
			Kind:        KindIdentity,
			ID:          v.ID,
			Name:        v.Name,
			Age:         v.Age,
			DateOfBirth: v.DateOfBirth,
			Nationality: v.Nationality,
		}, nil
	case Reference:
		return nodeRecord{Kind: KindReference, ID: v.ID, DocType: v.DocType, DocNumber: v.DocNumber}, nil
	case Event:
		return nodeRecord{Kind: KindEvent, ID: v.ID, EventType: v.EventType, EventDate: v.EventDate}, nil
	default:
		return nodeRecord{}, fmt.Errorf("unsupported node type %T", n)
	}
}

func (r nodeRecord) node() (Node, error) {
	switch r.Kind {
	case KindIdentity:
		return Identity{
			ID:          r.ID,
			Name:        r.Name,
			Age:         r.Age,
			DateOfBirth: r.DateOfBirth,
			Nationality: r.Nationality,
		}, nil
	case KindReference:
		return Reference{ID: r.ID, DocType: r.DocType, DocNumber: r.DocNumber}, nil
	case KindEvent:
		return Event{ID: r.ID, EventType: r.EventType, EventDate: r.EventDate}, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", r.Kind)
	}
}

type snapshotJSON struct {
	Nodes     []nodeRecord   `json:"nodes"`
	Edges     []Edge         `json:"edges"`
	Islands   []Island       `json:"islands"`
	Anomalies []AnomalyLabel `json:"anomalies,omitempty"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Nodes:     make([]nodeRecord, 0, len(s.Nodes)),
		Edges:     s.Edges,
		Islands:   s.Islands,
		Anomalies: s.Anomalies,
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	if out.Islands == nil {
		out.Islands = []Island{}
	}
	for _, n := range s.Nodes {
		rec, err := toRecord(n)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, rec)
	}
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	nodes := make([]Node, 0, len(in.Nodes))
	for _, rec := range in.Nodes {
		n, err := rec.node()
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	s.Nodes = nodes
	s.Edges = in.Edges
	s.Islands = in.Islands
	s.Anomalies = in.Anomalies
	return nil
}
