package bo

import (
	"fmt"

	"github.com/operator-framework/quboform/internal/sat"
	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/constraint"
)

// HOBO is a higher-order binary optimization problem over arbitrary
// labels. Terms may have any number of labels; ToQUBO reduces them to a
// quadratic model with ancilla variables.
//
// Logical constraints added through AddConstraint and its helpers become
// penalty terms scaled by the given multiplier. Choosing a multiplier
// large enough to dominate the objective is up to the caller.
type HOBO struct {
	core
	constraints []constraint.Constraint
}

// NewHOBO returns an empty HOBO.
func NewHOBO() *HOBO {
	return &HOBO{core: newCore(qubo.HigherOrder)}
}

// AddConstraint adds lam times the penalty of c and records c.
func (h *HOBO) AddConstraint(c constraint.Constraint, lam float64) error {
	p, err := c.Penalty(lam)
	if err != nil {
		return fmt.Errorf("adding %s: %w", c, err)
	}
	if err := h.AddPoly(p); err != nil {
		return fmt.Errorf("adding %s: %w", c, err)
	}
	h.constraints = append(h.constraints, c)
	return nil
}

// AddConstraintOR enforces that at least one of labels is 1.
func (h *HOBO) AddConstraintOR(lam float64, labels ...qubo.Label) error {
	return h.AddConstraint(constraint.Or(labels...), lam)
}

// AddConstraintNOR enforces that all of labels are 0.
func (h *HOBO) AddConstraintNOR(lam float64, labels ...qubo.Label) error {
	return h.AddConstraint(constraint.Nor(labels...), lam)
}

// AddConstraintAND enforces that all of labels are 1.
func (h *HOBO) AddConstraintAND(lam float64, labels ...qubo.Label) error {
	return h.AddConstraint(constraint.And(labels...), lam)
}

// AddConstraintNAND enforces that not all of labels are 1.
func (h *HOBO) AddConstraintNAND(lam float64, labels ...qubo.Label) error {
	return h.AddConstraint(constraint.Nand(labels...), lam)
}

// AddConstraintXOR enforces a != b.
func (h *HOBO) AddConstraintXOR(lam float64, a, b qubo.Label) error {
	return h.AddConstraint(constraint.Xor(a, b), lam)
}

// AddConstraintXNOR enforces a == b.
func (h *HOBO) AddConstraintXNOR(lam float64, a, b qubo.Label) error {
	return h.AddConstraint(constraint.Xnor(a, b), lam)
}

// AddConstraintEQ is AddConstraintXNOR.
func (h *HOBO) AddConstraintEQ(lam float64, a, b qubo.Label) error {
	return h.AddConstraint(constraint.Equal(a, b), lam)
}

// AddConstraintImplies enforces a → b.
func (h *HOBO) AddConstraintImplies(lam float64, a, b qubo.Label) error {
	return h.AddConstraint(constraint.Implies(a, b), lam)
}

// AddConstraintOne enforces l == 1.
func (h *HOBO) AddConstraintOne(lam float64, l qubo.Label) error {
	return h.AddConstraint(constraint.Mandatory(l), lam)
}

// AddConstraintZero enforces l == 0.
func (h *HOBO) AddConstraintZero(lam float64, l qubo.Label) error {
	return h.AddConstraint(constraint.Prohibited(l), lam)
}

// Constraints returns the constraints added so far, in order.
func (h *HOBO) Constraints() []constraint.Constraint {
	return append([]constraint.Constraint(nil), h.constraints...)
}

// ConstraintsSatisfied evaluates every recorded constraint for values and
// returns the ones that do not hold.
func (h *HOBO) ConstraintsSatisfied(values map[qubo.Label]int) (bool, []constraint.Constraint, error) {
	var violated []constraint.Constraint
	for _, c := range h.constraints {
		ok, err := c.Satisfied(values)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			violated = append(violated, c)
		}
	}
	return len(violated) == 0, violated, nil
}

// Feasible asks a SAT solver whether all recorded constraints can hold at
// once. It returns a witness assignment, or a sat.NotSatisfiable error
// naming conflicting constraints.
func (h *HOBO) Feasible(opts ...sat.Option) (map[qubo.Label]int, error) {
	return sat.Solve(h.constraints, opts...)
}

// Reduce returns the quadratic reduction of the polynomial.
func (h *HOBO) Reduce(opts ...ReduceOption) (*Reduction, error) {
	return Reduce(h.poly, opts...)
}

// ToQUBO reduces the polynomial to degree two and numbers its variables.
// Mapped labels keep their index; ancilla k gets index Next()+k, where
// Next is one past the largest mapped index.
func (h *HOBO) ToQUBO(opts ...ReduceOption) (*qubo.QUBOMatrix, error) {
	r, err := h.Reduce(opts...)
	if err != nil {
		return nil, err
	}
	base := h.mapper.Next()
	return h.relabel(r.Poly, func(l qubo.Label) (int, bool) {
		a, ok := l.(Ancilla)
		if !ok {
			return 0, false
		}
		return base + int(a), true
	})
}

// ToIsing returns the Ising model equivalent to ToQUBO.
func (h *HOBO) ToIsing(opts ...ReduceOption) (*qubo.IsingMatrix, error) {
	q, err := h.ToQUBO(opts...)
	if err != nil {
		return nil, err
	}
	return qubo.QUBOToIsing(q), nil
}
