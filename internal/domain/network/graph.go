// Package network models the protein interaction network and the
// permutation-tested coverage score computed over it.  The graph itself is a
// gonum undirected simple graph with a bidirectional name index, so gene
// symbols remain the public vocabulary while gonum's node IDs stay internal.
package network

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// Graph is an undirected gene interaction network indexed by gene symbol.
type Graph struct {
	g      *simple.UndirectedGraph
	ids    map[string]int64
	names  map[int64]string
	sorted []string
}

// NewGraph builds a Graph from edge records.  Self-loops are ignored since
// simple graphs cannot carry them and they never affect neighborhoods.
func NewGraph(edges []discovery.EdgeRecord) (*Graph, error) {
	if len(edges) == 0 {
		return nil, errors.New(errors.ErrCodeGraphEmpty, "interaction network has no edges")
	}

	ng := &Graph{
		g:     simple.NewUndirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}

	for _, e := range edges {
		if e.Gene1 == "" || e.Gene2 == "" {
			return nil, errors.New(errors.ErrCodeDatasetInvalid, "edge record with empty gene name")
		}
		if e.Gene1 == e.Gene2 {
			continue
		}
		u := ng.node(e.Gene1)
		v := ng.node(e.Gene2)
		if !ng.g.HasEdgeBetween(u.ID(), v.ID()) {
			ng.g.SetEdge(ng.g.NewEdge(u, v))
		}
	}

	if ng.g.Nodes().Len() == 0 {
		return nil, errors.New(errors.ErrCodeGraphEmpty, "interaction network has no nodes after filtering")
	}

	ng.sorted = make([]string, 0, len(ng.ids))
	for name := range ng.ids {
		ng.sorted = append(ng.sorted, name)
	}
	sort.Strings(ng.sorted)

	return ng, nil
}

func (ng *Graph) node(name string) graph.Node {
	if id, ok := ng.ids[name]; ok {
		return ng.g.Node(id)
	}
	n := ng.g.NewNode()
	ng.g.AddNode(n)
	ng.ids[name] = n.ID()
	ng.names[n.ID()] = name
	return n
}

// Order returns the number of nodes in the network.
func (ng *Graph) Order() int { return len(ng.ids) }

// EdgeCount returns the number of undirected edges.
func (ng *Graph) EdgeCount() int { return ng.g.Edges().Len() }

// Contains reports whether the gene is a node of the network.
func (ng *Graph) Contains(gene string) bool {
	_, ok := ng.ids[gene]
	return ok
}

// Nodes returns all gene symbols in deterministic sorted order.  The slice
// is shared; callers must not mutate it.
func (ng *Graph) Nodes() []string { return ng.sorted }

// Degree returns the degree of a gene node.
func (ng *Graph) Degree(gene string) (int, error) {
	id, ok := ng.ids[gene]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeNodeNotFound, "gene %s not in network", gene)
	}
	return ng.g.From(id).Len(), nil
}

// Intersect returns the genes from the input that are nodes of the network,
// deduplicated and sorted.
func (ng *Graph) Intersect(genes []string) []string {
	seen := make(map[string]struct{}, len(genes))
	out := make([]string, 0, len(genes))
	for _, g := range genes {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		if ng.Contains(g) {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

// Neighborhood returns the closed k-order neighborhood of the seed genes:
// the union over all seeds of every node reachable within k hops, seeds
// included.  Seeds not present in the network are rejected.
func (ng *Graph) Neighborhood(seeds []string, k int) ([]string, error) {
	if k < 0 {
		return nil, errors.InvalidParam("neighborhood order must be non-negative")
	}

	member := make(map[string]struct{})
	bfs := traverse.BreadthFirst{}
	for _, seed := range seeds {
		id, ok := ng.ids[seed]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeNodeNotFound, "gene %s not in network", seed)
		}
		bfs.Reset()
		bfs.Walk(ng.g, ng.g.Node(id), func(n graph.Node, depth int) bool {
			if depth > k {
				return true
			}
			member[ng.names[n.ID()]] = struct{}{}
			return false
		})
	}

	out := make([]string, 0, len(member))
	for name := range member {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

//Personal.AI order the ending
