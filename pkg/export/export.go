// Package export turns generated graphs into subject-predicate-object triples
// and reads them back.
//
// Every node becomes a subject IRI under the base URI. Node attributes,
// including the node kind under the "type" predicate, become literal-valued
// triples and every edge becomes one IRI-valued triple whose predicate is the
// edge type. Parallel edges are written as repeated lines.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

// DefaultBaseURI is the namespace of exported subjects and predicates.
const DefaultBaseURI = "http://syntetic_identity_island.org/"

// XSDInteger is the datatype IRI of integer literals.
const XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"

const typePredicate = "type"

// Term is the object of a triple: an IRI or a literal with an optional
// datatype.
type Term struct {
	Value    string
	IRI      bool
	Datatype string
}

// IRI returns an IRI term.
func IRI(value string) Term {
	return Term{Value: value, IRI: true}
}

// Literal returns a plain literal term.
func Literal(value string) Term {
	return Term{Value: value}
}

// Triple is a single statement. Subject and Predicate are IRIs.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// Triples enumerates g as triples: first the attribute triples of every node
// in node order, then one triple per edge in edge order.
func Triples(g *common.Graph, baseURI string) []Triple {
	if baseURI == "" {
		baseURI = DefaultBaseURI
	}

	out := make([]Triple, 0, g.NodeCount()*5+g.EdgeCount())
	for _, n := range g.Nodes() {
		subject := baseURI + n.NodeID()
		attr := func(key string, obj Term) {
			out = append(out, Triple{Subject: subject, Predicate: baseURI + key, Object: obj})
		}

		attr(typePredicate, Literal(string(n.Kind())))
		switch v := n.(type) {
		case common.Identity:
			attr("name", Literal(v.Name))
			attr("age", Term{Value: strconv.Itoa(v.Age), Datatype: XSDInteger})
			attr("date_of_birth", Literal(v.DateOfBirth))
			attr("nationality", Literal(v.Nationality))
		case common.Reference:
			attr("doc_type", Literal(string(v.DocType)))
			attr("doc_number", Literal(v.DocNumber))
		case common.Event:
			attr("event_type", Literal(string(v.EventType)))
			attr("event_date", Literal(v.EventDate))
		}
	}

	for _, e := range g.Edges() {
		out = append(out, Triple{
			Subject:   baseURI + e.From,
			Predicate: baseURI + string(e.Type),
			Object:    IRI(baseURI + e.To),
		})
	}
	return out
}

// FromTriples rebuilds a graph from triples produced by Triples. Statements
// whose predicate lies outside baseURI are ignored. Nodes are created in the
// order their subjects first appear in literal statements.
func FromTriples(triples []Triple, baseURI string) (*common.Graph, error) {
	if baseURI == "" {
		baseURI = DefaultBaseURI
	}

	order := make([]string, 0)
	attrs := make(map[string]map[string]string)
	edges := make([]common.Edge, 0)

	for i, t := range triples {
		key, ok := strings.CutPrefix(t.Predicate, baseURI)
		if !ok {
			continue
		}
		subject, ok := strings.CutPrefix(t.Subject, baseURI)
		if !ok || subject == "" {
			return nil, fmt.Errorf("statement %d: subject %q is outside %s", i, t.Subject, baseURI)
		}

		if t.Object.IRI {
			object, ok := strings.CutPrefix(t.Object.Value, baseURI)
			if !ok || object == "" {
				return nil, fmt.Errorf("statement %d: object %q is outside %s", i, t.Object.Value, baseURI)
			}
			edges = append(edges, common.Edge{From: subject, To: object, Type: common.EdgeType(key)})
			continue
		}

		a, seen := attrs[subject]
		if !seen {
			a = make(map[string]string)
			attrs[subject] = a
			order = append(order, subject)
		}
		if _, dup := a[key]; dup {
			return nil, fmt.Errorf("statement %d: duplicate %s for %s", i, key, subject)
		}
		a[key] = t.Object.Value
	}

	g := common.NewGraph()
	for _, id := range order {
		n, err := nodeFromAttributes(id, attrs[id])
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("failed to add node: %w", err)
		}
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e.From, e.To, e.Type); err != nil {
			return nil, fmt.Errorf("failed to add edge: %w", err)
		}
	}
	return g, nil
}

func nodeFromAttributes(id string, a map[string]string) (common.Node, error) {
	switch common.NodeKind(a[typePredicate]) {
	case common.KindIdentity:
		age, err := strconv.Atoi(a["age"])
		if err != nil {
			return nil, fmt.Errorf("failed to parse age of %s: %w", id, err)
		}
		return common.Identity{
			ID:          id,
			Name:        a["name"],
			Age:         age,
			DateOfBirth: a["date_of_birth"],
			Nationality: a["nationality"],
		}, nil
	case common.KindReference:
		return common.Reference{
			ID:        id,
			DocType:   common.DocType(a["doc_type"]),
			DocNumber: a["doc_number"],
		}, nil
	case common.KindEvent:
		return common.Event{
			ID:        id,
			EventType: common.EventType(a["event_type"]),
			EventDate: a["event_date"],
		}, nil
	default:
		return nil, fmt.Errorf("node %s has unknown type %q", id, a[typePredicate])
	}
}
