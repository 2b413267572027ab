package common

import "fmt"

// Graph is a directed multigraph over typed nodes.
//
// Nodes and edges are kept in insertion order so that a graph built from the
// same sequence of calls always enumerates identically. Edges are never
// merged: adding the same (from, to, type) twice yields two edges.
// A Graph is not safe for concurrent mutation.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
	out   map[string][]int
	in    map[string][]int
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}
}

// AddNode registers n. Node ids are unique within a graph.
func (g *Graph) AddNode(n Node) error {
	if n == nil || n.NodeID() == "" {
		return fmt.Errorf("node id is empty")
	}
	id := n.NodeID()
	if _, ok := g.index[id]; ok {
		return fmt.Errorf("%w: %s", ErrNodeExists, id)
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

// AddEdge appends a directed edge of type t from one existing node to another.
// Self-loops and parallel edges are allowed.
func (g *Graph) AddEdge(from, to string, t EdgeType) (Edge, error) {
	if _, ok := g.index[from]; !ok {
		return Edge{}, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, from)
	}
	if _, ok := g.index[to]; !ok {
		return Edge{}, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, to)
	}
	if !t.Valid() {
		return Edge{}, fmt.Errorf("unknown edge type %q", t)
	}

	e := Edge{Seq: len(g.edges), From: from, To: to, Type: t}
	g.edges = append(g.edges, e)
	g.out[from] = append(g.out[from], e.Seq)
	g.in[to] = append(g.in[to], e.Seq)
	return e, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	idx, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// Identity returns the identity node with the given id. It reports false if
// the id is unknown or refers to a node of another kind.
func (g *Graph) Identity(id string) (Identity, bool) {
	n, ok := g.Node(id)
	if !ok {
		return Identity{}, false
	}
	identity, ok := n.(Identity)
	return identity, ok
}

// Identities resolves ids to identity nodes, preserving order.
func (g *Graph) Identities(ids []string) ([]Identity, error) {
	out := make([]Identity, 0, len(ids))
	for _, id := range ids {
		identity, ok := g.Identity(id)
		if !ok {
			return nil, fmt.Errorf("%w: identity %s", ErrNodeNotFound, id)
		}
		out = append(out, identity)
	}
	return out, nil
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutEdges returns the edges leaving id in insertion order.
func (g *Graph) OutEdges(id string) []Edge {
	return g.collect(g.out[id])
}

// InEdges returns the edges entering id in insertion order.
func (g *Graph) InEdges(id string) []Edge {
	return g.collect(g.in[id])
}

func (g *Graph) collect(seqs []int) []Edge {
	out := make([]Edge, 0, len(seqs))
	for _, seq := range seqs {
		out = append(out, g.edges[seq])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallel edges separately.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// CountKind returns the number of nodes of the given kind.
func (g *Graph) CountKind(kind NodeKind) int {
	count := 0
	for _, n := range g.nodes {
		if n.Kind() == kind {
			count++
		}
	}
	return count
}

// CountEdges returns the number of edges of the given type.
func (g *Graph) CountEdges(t EdgeType) int {
	count := 0
	for _, e := range g.edges {
		if e.Type == t {
			count++
		}
	}
	return count
}
