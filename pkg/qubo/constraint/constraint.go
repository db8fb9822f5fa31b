package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/quboform/pkg/qubo"
)

// ErrArity is returned when a constraint is built over the wrong number of
// labels.
var ErrArity = errors.New("wrong number of labels")

// LitMapping hands out the SAT literal standing for a label.
type LitMapping interface {
	LitOf(l qubo.Label) z.Lit
}

// Constraint is a logical relation between binary variables. It can be
// expressed as a penalty polynomial, which is zero exactly on the
// assignments satisfying the relation and at least lam everywhere else,
// or as a literal of a gini logic circuit.
type Constraint interface {
	String() string
	Labels() []qubo.Label
	Validate() error
	Penalty(lam float64) (*qubo.Poly, error)
	Apply(c *logic.C, lm LitMapping) z.Lit
	Satisfied(values map[qubo.Label]int) (bool, error)
}

type operands []qubo.Label

func (o operands) Labels() []qubo.Label {
	return append([]qubo.Label(nil), o...)
}

func (o operands) format(name string) string {
	s := make([]string, len(o))
	for i, l := range o {
		s[i] = qubo.FormatLabel(l)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(s, ", "))
}

func (o operands) arity(name string, min, max int) error {
	if len(o) < min || (max > 0 && len(o) > max) {
		return fmt.Errorf("%s over %d labels: %w", name, len(o), ErrArity)
	}
	for _, l := range o {
		if _, err := qubo.NormalizeLabel(l); err != nil {
			return err
		}
	}
	return nil
}

func (o operands) lits(lm LitMapping) []z.Lit {
	ms := make([]z.Lit, len(o))
	for i, l := range o {
		ms[i] = lm.LitOf(norm(l))
	}
	return ms
}

func (o operands) truth(values map[qubo.Label]int) ([]bool, error) {
	out := make([]bool, len(o))
	for i, l := range o {
		v, ok := values[norm(l)]
		if !ok {
			return nil, fmt.Errorf("no value for %s: %w", qubo.FormatLabel(l), qubo.ErrMissingVariable)
		}
		out[i] = v == 1
	}
	return out, nil
}

func norm(l qubo.Label) qubo.Label {
	if n, err := qubo.NormalizeLabel(l); err == nil {
		return n
	}
	return l
}

// variable returns the polynomial x.
func variable(l qubo.Label) *qubo.Poly {
	p := qubo.NewPoly(qubo.HigherOrder)
	_ = p.Add(1, l)
	return p
}

// complement returns the polynomial 1 - x.
func complement(l qubo.Label) *qubo.Poly {
	p := qubo.NewPoly(qubo.HigherOrder)
	p.AddConstant(1)
	_ = p.Add(-1, l)
	return p
}

func product(factors []*qubo.Poly) (*qubo.Poly, error) {
	res := qubo.NewPoly(qubo.HigherOrder)
	res.AddConstant(1)
	for _, f := range factors {
		var err error
		if res, err = res.Mul(f); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func penalty(lam float64, terms ...qubo.Monomial) *qubo.Poly {
	p := qubo.NewPoly(qubo.HigherOrder)
	for _, t := range terms {
		_ = p.AddTerm(t.Term, lam*t.Coef)
	}
	p.Clean()
	return p
}

func term(coef float64, labels ...qubo.Label) qubo.Monomial {
	return qubo.Monomial{Term: labels, Coef: coef}
}

type orConstraint struct{ operands }

// Or requires at least one of the labels to be 1. The penalty
// lam·Π(1-x_i) has degree len(labels).
func Or(labels ...qubo.Label) Constraint {
	return &orConstraint{operands(labels)}
}

func (c *orConstraint) String() string { return c.format("OR") }

func (c *orConstraint) Validate() error { return c.arity("OR", 2, 0) }

func (c *orConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	factors := make([]*qubo.Poly, len(c.operands))
	for i, l := range c.operands {
		factors[i] = complement(l)
	}
	p, err := product(factors)
	if err != nil {
		return nil, err
	}
	p.Scale(lam)
	p.Clean()
	return p, nil
}

func (c *orConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	return circuit.Ors(c.lits(lm)...)
}

func (c *orConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	for _, v := range vs {
		if v {
			return true, nil
		}
	}
	return false, nil
}

type norConstraint struct{ operands }

// Nor requires every label to be 0. The penalty is lam·(1-Π(1-x_i)).
func Nor(labels ...qubo.Label) Constraint {
	return &norConstraint{operands(labels)}
}

func (c *norConstraint) String() string { return c.format("NOR") }

func (c *norConstraint) Validate() error { return c.arity("NOR", 2, 0) }

func (c *norConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	or, err := (&orConstraint{c.operands}).Penalty(1)
	if err != nil {
		return nil, err
	}
	p := qubo.NewPoly(qubo.HigherOrder)
	p.AddConstant(1)
	if err := p.SubPoly(or); err != nil {
		return nil, err
	}
	p.Scale(lam)
	p.Clean()
	return p, nil
}

func (c *norConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	return circuit.Ors(c.lits(lm)...).Not()
}

func (c *norConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	ok, err := (&orConstraint{c.operands}).Satisfied(values)
	return !ok, err
}

type andConstraint struct{ operands }

// And requires every label to be 1. The penalty is lam·(1-Π x_i).
func And(labels ...qubo.Label) Constraint {
	return &andConstraint{operands(labels)}
}

func (c *andConstraint) String() string { return c.format("AND") }

func (c *andConstraint) Validate() error { return c.arity("AND", 2, 0) }

func (c *andConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p := qubo.NewPoly(qubo.HigherOrder)
	p.AddConstant(lam)
	if err := p.Add(-lam, c.operands...); err != nil {
		return nil, err
	}
	p.Clean()
	return p, nil
}

func (c *andConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	return circuit.Ands(c.lits(lm)...)
}

func (c *andConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	for _, v := range vs {
		if !v {
			return false, nil
		}
	}
	return true, nil
}

type nandConstraint struct{ operands }

// Nand forbids all labels being 1 at once. The penalty is lam·Π x_i.
func Nand(labels ...qubo.Label) Constraint {
	return &nandConstraint{operands(labels)}
}

// Conflict permits a or b, or neither, but not both.
func Conflict(a, b qubo.Label) Constraint {
	return Nand(a, b)
}

func (c *nandConstraint) String() string { return c.format("NAND") }

func (c *nandConstraint) Validate() error { return c.arity("NAND", 2, 0) }

func (c *nandConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return penalty(lam, term(1, c.operands...)), nil
}

func (c *nandConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	return circuit.Ands(c.lits(lm)...).Not()
}

func (c *nandConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	ok, err := (&andConstraint{c.operands}).Satisfied(values)
	return !ok, err
}

type xorConstraint struct{ operands }

// Xor requires exactly one of a and b to be 1.
func Xor(a, b qubo.Label) Constraint {
	return &xorConstraint{operands{a, b}}
}

// NotEqual is Xor.
func NotEqual(a, b qubo.Label) Constraint {
	return Xor(a, b)
}

func (c *xorConstraint) String() string { return c.format("XOR") }

func (c *xorConstraint) Validate() error { return c.arity("XOR", 2, 2) }

func (c *xorConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	a, b := c.operands[0], c.operands[1]
	return penalty(lam, term(1), term(-1, a), term(-1, b), term(2, a, b)), nil
}

func (c *xorConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	ms := c.lits(lm)
	return xor(circuit, ms[0], ms[1])
}

func (c *xorConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	return vs[0] != vs[1], nil
}

type xnorConstraint struct{ operands }

// Xnor requires a and b to take the same value.
func Xnor(a, b qubo.Label) Constraint {
	return &xnorConstraint{operands{a, b}}
}

// Equal is Xnor.
func Equal(a, b qubo.Label) Constraint {
	return Xnor(a, b)
}

func (c *xnorConstraint) String() string { return c.format("XNOR") }

func (c *xnorConstraint) Validate() error { return c.arity("XNOR", 2, 2) }

func (c *xnorConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	a, b := c.operands[0], c.operands[1]
	return penalty(lam, term(1, a), term(1, b), term(-2, a, b)), nil
}

func (c *xnorConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	ms := c.lits(lm)
	return xor(circuit, ms[0], ms[1]).Not()
}

func (c *xnorConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	return vs[0] == vs[1], nil
}

type impliesConstraint struct{ operands }

// Implies requires b to be 1 whenever a is 1.
func Implies(a, b qubo.Label) Constraint {
	return &impliesConstraint{operands{a, b}}
}

func (c *impliesConstraint) String() string { return c.format("IMPLIES") }

func (c *impliesConstraint) Validate() error { return c.arity("IMPLIES", 2, 2) }

func (c *impliesConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	a, b := c.operands[0], c.operands[1]
	return penalty(lam, term(1, a), term(-1, a, b)), nil
}

func (c *impliesConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	ms := c.lits(lm)
	return circuit.Or(ms[0].Not(), ms[1])
}

func (c *impliesConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	return !vs[0] || vs[1], nil
}

type dependencyConstraint struct{ operands }

// Dependency permits subject to be 1 only if at least one of ids is 1.
// The penalty lam·s·Π(1-d_i) has degree len(ids)+1.
func Dependency(subject qubo.Label, ids ...qubo.Label) Constraint {
	return &dependencyConstraint{append(operands{subject}, ids...)}
}

func (c *dependencyConstraint) String() string {
	return fmt.Sprintf("%s requires at least one of %s", qubo.FormatLabel(c.operands[0]), c.operands[1:].format("OR"))
}

func (c *dependencyConstraint) Validate() error { return c.arity("DEPENDENCY", 2, 0) }

func (c *dependencyConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	factors := []*qubo.Poly{variable(c.operands[0])}
	for _, l := range c.operands[1:] {
		factors = append(factors, complement(l))
	}
	p, err := product(factors)
	if err != nil {
		return nil, err
	}
	p.Scale(lam)
	p.Clean()
	return p, nil
}

func (c *dependencyConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	ms := c.lits(lm)
	return circuit.Or(ms[0].Not(), circuit.Ors(ms[1:]...))
}

func (c *dependencyConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	if !vs[0] {
		return true, nil
	}
	for _, v := range vs[1:] {
		if v {
			return true, nil
		}
	}
	return false, nil
}

type mandatoryConstraint struct{ operands }

// Mandatory requires l to be 1.
func Mandatory(l qubo.Label) Constraint {
	return &mandatoryConstraint{operands{l}}
}

func (c *mandatoryConstraint) String() string {
	return fmt.Sprintf("%s is mandatory", qubo.FormatLabel(c.operands[0]))
}

func (c *mandatoryConstraint) Validate() error { return c.arity("MANDATORY", 1, 1) }

func (c *mandatoryConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return penalty(lam, term(1), term(-1, c.operands[0])), nil
}

func (c *mandatoryConstraint) Apply(_ *logic.C, lm LitMapping) z.Lit {
	return c.lits(lm)[0]
}

func (c *mandatoryConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	return vs[0], nil
}

type prohibitedConstraint struct{ operands }

// Prohibited requires l to be 0.
func Prohibited(l qubo.Label) Constraint {
	return &prohibitedConstraint{operands{l}}
}

func (c *prohibitedConstraint) String() string {
	return fmt.Sprintf("%s is prohibited", qubo.FormatLabel(c.operands[0]))
}

func (c *prohibitedConstraint) Validate() error { return c.arity("PROHIBITED", 1, 1) }

func (c *prohibitedConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return penalty(lam, term(1, c.operands[0])), nil
}

func (c *prohibitedConstraint) Apply(_ *logic.C, lm LitMapping) z.Lit {
	return c.lits(lm)[0].Not()
}

func (c *prohibitedConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	return !vs[0], nil
}

type exactlyOneConstraint struct{ operands }

// ExactlyOne requires exactly one of the labels to be 1. The penalty is
// lam·(1-Σx_i)², which is quadratic whatever the number of labels.
func ExactlyOne(labels ...qubo.Label) Constraint {
	return &exactlyOneConstraint{operands(labels)}
}

func (c *exactlyOneConstraint) String() string { return c.format("EXACTLY_ONE") }

func (c *exactlyOneConstraint) Validate() error { return c.arity("EXACTLY_ONE", 1, 0) }

func (c *exactlyOneConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	terms := []qubo.Monomial{term(1)}
	for i, a := range c.operands {
		terms = append(terms, term(-1, a))
		for _, b := range c.operands[i+1:] {
			terms = append(terms, term(2, a, b))
		}
	}
	return penalty(lam, terms...), nil
}

func (c *exactlyOneConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	ms := c.lits(lm)
	return circuit.And(circuit.Ors(ms...), circuit.CardSort(ms).Leq(1))
}

func (c *exactlyOneConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	n, err := c.count(values)
	return n == 1, err
}

func (o operands) count(values map[qubo.Label]int) (int, error) {
	vs, err := o.truth(values)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range vs {
		if v {
			n++
		}
	}
	return n, nil
}

type atMostOneConstraint struct{ operands }

// AtMostOne forbids more than one of the labels being 1. The penalty is
// lam·Σ_{i<j} x_i x_j.
func AtMostOne(labels ...qubo.Label) Constraint {
	return &atMostOneConstraint{operands(labels)}
}

func (c *atMostOneConstraint) String() string { return c.format("AT_MOST_ONE") }

func (c *atMostOneConstraint) Validate() error { return c.arity("AT_MOST_ONE", 1, 0) }

func (c *atMostOneConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var terms []qubo.Monomial
	for i, a := range c.operands {
		for _, b := range c.operands[i+1:] {
			terms = append(terms, term(1, a, b))
		}
	}
	return penalty(lam, terms...), nil
}

func (c *atMostOneConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	return circuit.CardSort(c.lits(lm)).Leq(1)
}

func (c *atMostOneConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	n, err := c.count(values)
	return n <= 1, err
}

func xor(c *logic.C, a, b z.Lit) z.Lit {
	return c.Or(c.And(a, b.Not()), c.And(a.Not(), b))
}

type clauseConstraint struct {
	operands
	negated int
}

// Clause requires at least one of pos to be 1 or at least one of neg to
// be 0, the disjunction of a CNF clause. The penalty is
// lam·Π(1-p_i)·Πn_j.
func Clause(pos, neg []qubo.Label) Constraint {
	o := append(append(operands{}, pos...), neg...)
	return &clauseConstraint{operands: o, negated: len(neg)}
}

func (c *clauseConstraint) split() (operands, operands) {
	k := len(c.operands) - c.negated
	return c.operands[:k], c.operands[k:]
}

func (c *clauseConstraint) String() string {
	pos, neg := c.split()
	s := make([]string, 0, len(c.operands))
	for _, l := range pos {
		s = append(s, qubo.FormatLabel(l))
	}
	for _, l := range neg {
		s = append(s, "!"+qubo.FormatLabel(l))
	}
	return fmt.Sprintf("CLAUSE(%s)", strings.Join(s, ", "))
}

func (c *clauseConstraint) Validate() error { return c.arity("CLAUSE", 1, 0) }

func (c *clauseConstraint) Penalty(lam float64) (*qubo.Poly, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	pos, neg := c.split()
	factors := make([]*qubo.Poly, 0, len(c.operands))
	for _, l := range pos {
		factors = append(factors, complement(l))
	}
	for _, l := range neg {
		factors = append(factors, variable(l))
	}
	p, err := product(factors)
	if err != nil {
		return nil, err
	}
	p.Scale(lam)
	p.Clean()
	return p, nil
}

func (c *clauseConstraint) Apply(circuit *logic.C, lm LitMapping) z.Lit {
	pos, neg := c.split()
	ms := pos.lits(lm)
	for _, m := range neg.lits(lm) {
		ms = append(ms, m.Not())
	}
	return circuit.Ors(ms...)
}

func (c *clauseConstraint) Satisfied(values map[qubo.Label]int) (bool, error) {
	vs, err := c.truth(values)
	if err != nil {
		return false, err
	}
	k := len(vs) - c.negated
	for i, v := range vs {
		if v == (i < k) {
			return true, nil
		}
	}
	return false, nil
}
