package dimacs

import (
	"github.com/operator-framework/quboform/pkg/problems/covering"
	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/bo"
	"github.com/operator-framework/quboform/pkg/qubo/constraint"
)

// EncodeCNF builds a HOBO whose value is lam times the number of clauses
// an assignment leaves unsatisfied. Variable i of the CNF is labelled i.
// Labels that only occur in tautological clauses are dropped from the
// mapping.
func EncodeCNF(d *CNF, lam float64) (*bo.HOBO, error) {
	h := bo.NewHOBO()
	for _, clause := range d.clauses {
		var pos, neg []qubo.Label
		for _, lit := range clause {
			if lit < 0 {
				neg = append(neg, -lit)
			} else {
				pos = append(pos, lit)
			}
		}
		if err := h.AddConstraint(constraint.Clause(pos, neg), lam); err != nil {
			return nil, err
		}
	}
	h.Refresh()
	return h, nil
}

// EdgeSet returns the edges of g with vertex labels 1..n.
func EdgeSet(g *Graph) covering.EdgeSet {
	edges := make(covering.EdgeSet, len(g.edges))
	for _, e := range g.edges {
		edges[covering.Edge{e[0], e[1]}] = struct{}{}
	}
	return edges
}
