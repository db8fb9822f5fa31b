package sat

import (
	"fmt"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/constraint"
)

// litMapping performs translation between constraints over qubo labels
// and the literals that appear in the SAT formula.
type litMapping struct {
	inorder     []qubo.Label
	lits        map[qubo.Label]z.Lit
	constraints map[z.Lit]constraint.Constraint
	roots       []z.Lit
	c           *logic.C
}

var _ constraint.LitMapping = &litMapping{}

// newLitMapping validates and applies every constraint to a fresh logic
// circuit, recording which literal stands for which constraint.
func newLitMapping(constraints []constraint.Constraint) (*litMapping, error) {
	d := litMapping{
		lits:        make(map[qubo.Label]z.Lit),
		constraints: make(map[z.Lit]constraint.Constraint, len(constraints)),
		c:           logic.NewC(),
	}
	for _, c := range constraints {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid constraint %s: %w", c, err)
		}
		m := c.Apply(d.c, &d)
		if _, ok := d.constraints[m]; !ok {
			d.constraints[m] = c
		}
		d.roots = append(d.roots, m)
	}
	return &d, nil
}

// LitOf returns the positive literal standing for l, allocating one the
// first time l is seen.
func (d *litMapping) LitOf(l qubo.Label) z.Lit {
	if m, ok := d.lits[l]; ok {
		return m
	}
	m := d.c.Lit()
	d.lits[l] = m
	d.inorder = append(d.inorder, l)
	return m
}

// AddConstraints teaches the circuit to g and assumes every constraint
// literal.
func (d *litMapping) AddConstraints(g inter.S) {
	d.c.ToCnf(g)
	g.Assume(d.roots...)
}

// Assignment reads the value of every mapped label from a satisfied g.
func (d *litMapping) Assignment(g inter.S) map[qubo.Label]int {
	out := make(map[qubo.Label]int, len(d.inorder))
	for _, l := range d.inorder {
		if g.Value(d.lits[l]) {
			out[l] = 1
		} else {
			out[l] = 0
		}
	}
	return out
}

// Conflicts returns the constraints whose assumptions were used to
// prove g unsatisfiable.
func (d *litMapping) Conflicts(g inter.Assumable) []constraint.Constraint {
	whys := g.Why(nil)
	cs := make([]constraint.Constraint, 0, len(whys))
	for _, why := range whys {
		if c, ok := d.constraints[why]; ok {
			cs = append(cs, c)
		}
	}
	return cs
}
