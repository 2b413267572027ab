package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

// DescribeIslands writes a per-island summary of members with their names,
// dates of birth and nationalities.
func DescribeIslands(w io.Writer, g *common.Graph, islands []common.Island) error {
	for i, island := range islands {
		if _, err := fmt.Fprintf(w, "Island %d (%d identities)\n", i, len(island)); err != nil {
			return err
		}
		for j, id := range island {
			identity, ok := g.Identity(id)
			if !ok {
				return fmt.Errorf("%w: island member %s", common.ErrNodeNotFound, id)
			}
			role := "variant"
			if j == 0 {
				role = "base"
			}
			if _, err := fmt.Fprintf(
				w, "  %-7s %s  %q  %s  %s  age %d\n",
				role, identity.ID, identity.Name, identity.DateOfBirth, identity.Nationality, identity.Age,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// DescribeNode writes the attributes of one node followed by its outgoing
// and incoming edges.
func DescribeNode(w io.Writer, g *common.Graph, id string) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrNodeNotFound, id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", n.Kind(), n.NodeID())
	switch v := n.(type) {
	case common.Identity:
		fmt.Fprintf(&b, "  name: %s\n  age: %d\n  date_of_birth: %s\n  nationality: %s\n",
			v.Name, v.Age, v.DateOfBirth, v.Nationality)
	case common.Reference:
		fmt.Fprintf(&b, "  doc_type: %s\n  doc_number: %s\n", v.DocType, v.DocNumber)
	case common.Event:
		fmt.Fprintf(&b, "  event_type: %s\n  event_date: %s\n", v.EventType, v.EventDate)
	}
	for _, e := range g.OutEdges(id) {
		fmt.Fprintf(&b, "  -[%s]-> %s\n", e.Type, e.To)
	}
	for _, e := range g.InEdges(id) {
		fmt.Fprintf(&b, "  <-[%s]- %s\n", e.Type, e.From)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Stats summarizes node and edge counts of a graph.
type Stats struct {
	Islands    int                        `json:"islands" yaml:"islands"`
	Identities int                        `json:"identities" yaml:"identities"`
	References int                        `json:"references" yaml:"references"`
	Events     int                        `json:"events" yaml:"events"`
	Edges      map[common.EdgeType]int    `json:"edges" yaml:"edges"`
	Anomalies  map[common.AnomalyKind]int `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
}

// ComputeStats counts the nodes, edges and anomaly labels of a snapshot.
func ComputeStats(s common.Snapshot) Stats {
	stats := Stats{
		Islands: len(s.Islands),
		Edges:   make(map[common.EdgeType]int, len(common.EdgeTypes)),
	}
	for _, n := range s.Nodes {
		switch n.Kind() {
		case common.KindIdentity:
			stats.Identities++
		case common.KindReference:
			stats.References++
		case common.KindEvent:
			stats.Events++
		}
	}
	for _, e := range s.Edges {
		stats.Edges[e.Type]++
	}
	if len(s.Anomalies) > 0 {
		stats.Anomalies = make(map[common.AnomalyKind]int, len(common.AnomalyKinds))
		for _, a := range s.Anomalies {
			stats.Anomalies[a.Kind]++
		}
	}
	return stats
}
