package covering

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/operator-framework/quboform/pkg/problems"
	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/bo"
)

// Edge is an undirected edge between two vertex labels.
type Edge [2]qubo.Label

type EdgeSet map[Edge]struct{}

type VertexSet map[qubo.Label]struct{}

// NewEdgeSet builds an EdgeSet from a list of edges.
func NewEdgeSet(edges ...Edge) EdgeSet {
	s := make(EdgeSet, len(edges))
	for _, e := range edges {
		s[e] = struct{}{}
	}
	return s
}

// NewVertexSet builds a VertexSet from a list of labels.
func NewVertexSet(labels ...qubo.Label) VertexSet {
	s := make(VertexSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// VertexCover asks for the smallest set of vertices touching every edge
// of a graph.
//
// The QUBO charges B for every selected vertex and A for every edge with
// no selected endpoint. Multipliers are read as "A" (default 2) and "B"
// (default 1); A must exceed B for the minimum to be a valid cover, which
// is left to the caller.
type VertexCover struct {
	problems.Base

	edges    EdgeSet
	vertices []qubo.Label
	index    map[qubo.Label]int
}

// NewVertexCover returns the vertex cover problem on edges. Vertex labels
// are normalised; vertices are numbered in label order.
func NewVertexCover(edges EdgeSet) (*VertexCover, error) {
	vc := &VertexCover{
		edges: make(EdgeSet, len(edges)),
		index: make(map[qubo.Label]int),
	}
	for e := range edges {
		var n Edge
		for i, l := range e {
			v, err := qubo.NormalizeLabel(l)
			if err != nil {
				return nil, fmt.Errorf("edge %v: %w", e, err)
			}
			n[i] = v
			if _, ok := vc.index[v]; !ok {
				vc.index[v] = 0
				vc.vertices = append(vc.vertices, v)
			}
		}
		vc.edges[n] = struct{}{}
	}
	qubo.SortLabels(vc.vertices)
	for i, v := range vc.vertices {
		vc.index[v] = i
	}
	vc.Base = problems.NewBase(vc, "VertexCover", []any{maps.Clone(vc.edges)}, nil)
	return vc, nil
}

// E returns a copy of the edges.
func (vc *VertexCover) E() EdgeSet {
	return maps.Clone(vc.edges)
}

// V returns a copy of the vertex set.
func (vc *VertexCover) V() VertexSet {
	return NewVertexSet(vc.vertices...)
}

func (vc *VertexCover) NumEdges() int {
	return len(vc.edges)
}

func (vc *VertexCover) NumVertices() int {
	return len(vc.vertices)
}

// NumBinaryVariables is one per vertex.
func (vc *VertexCover) NumBinaryVariables() int {
	return len(vc.vertices)
}

// FormulateQUBO builds the penalty model.
func (vc *VertexCover) FormulateQUBO(m problems.Multipliers) (*qubo.QUBOMatrix, error) {
	a, b := m.Get("A", 2), m.Get("B", 1)

	h := bo.NewHOBO()
	if err := h.SetMapping(maps.Clone(vc.index)); err != nil {
		return nil, err
	}
	for _, v := range vc.vertices {
		if err := h.Add(b, v); err != nil {
			return nil, err
		}
	}
	for _, e := range vc.sortedEdges() {
		if err := h.AddConstraintOR(a, e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return h.ToQUBO()
}

// ConvertSolution returns the vertices whose variable is 1. Use
// qubo.SolutionFromSlice for solutions given as a slice.
func (vc *VertexCover) ConvertSolution(sol qubo.Solution) (VertexSet, error) {
	out := VertexSet{}
	for i, v := range vc.vertices {
		x, ok := sol[i]
		if !ok {
			return nil, qubo.MissingVariable(i)
		}
		if x == 1 {
			out[v] = struct{}{}
		}
	}
	return out, nil
}

// IsSolutionValid reports whether every edge has an endpoint in cover.
func (vc *VertexCover) IsSolutionValid(cover VertexSet) bool {
	for e := range vc.edges {
		_, u := cover[e[0]]
		_, v := cover[e[1]]
		if !u && !v {
			return false
		}
	}
	return true
}

// SolveBruteforce returns a minimum cover found by exhaustive search.
func (vc *VertexCover) SolveBruteforce(ctx context.Context, opts ...problems.Option) (VertexSet, error) {
	return problems.SolveBruteforce[VertexSet](ctx, vc, opts...)
}

// SolveBruteforceAll returns every minimum cover.
func (vc *VertexCover) SolveBruteforceAll(ctx context.Context, opts ...problems.Option) ([]VertexSet, error) {
	return problems.SolveBruteforceAll[VertexSet](ctx, vc, opts...)
}

// sortedEdges orders edges by their endpoints' vertex indices so that the
// formulation does not depend on map iteration order.
func (vc *VertexCover) sortedEdges() []Edge {
	out := make([]Edge, 0, len(vc.edges))
	for e := range vc.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if c := cmp.Compare(vc.index[x[0]], vc.index[y[0]]); c != 0 {
			return c
		}
		return cmp.Compare(vc.index[x[1]], vc.index[y[1]])
	})
	return out
}

// Register makes VertexCover available to r.Parse. The single positional
// argument must be a set of two-element tuples.
func Register(r *problems.Registry) error {
	return r.Register("VertexCover", func(args problems.Args) (problems.Problem, error) {
		if len(args.Positional) != 1 || len(args.Keyword) != 0 {
			return nil, fmt.Errorf("VertexCover takes exactly one argument, the edge set")
		}
		edges, err := edgesOf(args.Positional[0])
		if err != nil {
			return nil, err
		}
		vc, err := NewVertexCover(edges)
		if err != nil {
			return nil, err
		}
		return vc, nil
	})
}

func edgesOf(v any) (EdgeSet, error) {
	switch x := v.(type) {
	case EdgeSet:
		return x, nil
	case problems.Set:
		out := make(EdgeSet, len(x))
		for _, el := range x {
			t, ok := el.(problems.Tuple)
			if !ok || len(t) != 2 {
				return nil, fmt.Errorf("edge %v is not a pair", el)
			}
			var e Edge
			for i, l := range t {
				n, err := qubo.NormalizeLabel(l)
				if err != nil {
					return nil, fmt.Errorf("edge %v: %w", el, err)
				}
				e[i] = n
			}
			out[e] = struct{}{}
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a set of edges, got %T", v)
}
