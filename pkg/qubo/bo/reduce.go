package bo

import (
	"fmt"
	"math"

	"github.com/operator-framework/quboform/pkg/qubo"
)

// Ancilla labels an auxiliary variable introduced by degree reduction.
// Ancillas exist only inside reduced polynomials; HOBO refuses them as
// user labels.
type Ancilla int

func (a Ancilla) String() string {
	return fmt.Sprintf("_a%d", int(a))
}

type pair struct {
	a, b qubo.Label
}

// Reduction is a quadratic polynomial equivalent, at its minimum, to a
// higher-order one.
type Reduction struct {
	// Poly has at most two labels per term.
	Poly *qubo.Poly
	// Ancillas maps every ancilla to the product of labels it replaces.
	Ancillas map[Ancilla][2]qubo.Label
	// Penalty is the multiplier of the product constraints.
	Penalty float64
}

type reduceSettings struct {
	penalty float64
}

// ReduceOption configures degree reduction.
type ReduceOption func(s *reduceSettings) error

// WithReductionPenalty fixes the multiplier enforcing ancilla = a·b. By
// default it is one more than the sum of the absolute coefficients of all
// terms of degree three or more, which is enough for every minimum of the
// reduced polynomial to have consistent ancillas.
func WithReductionPenalty(lam float64) ReduceOption {
	return func(s *reduceSettings) error {
		if !(lam > 0) {
			return fmt.Errorf("reduction penalty must be positive, got %v", lam)
		}
		s.penalty = lam
		return nil
	}
}

// Reduce rewrites p into a quadratic polynomial. While a term of degree
// three or more remains, the pair of labels shared by the most such terms
// is replaced by a fresh ancilla z, and lam·(3z + ab - 2az - 2bz) is added;
// that penalty is zero when z = a·b and at least lam otherwise.
func Reduce(p *qubo.Poly, opts ...ReduceOption) (*Reduction, error) {
	s := reduceSettings{}
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	work := qubo.NewPoly(qubo.HigherOrder)
	var bound float64
	for _, t := range p.Terms() {
		if t.Coef == 0 {
			continue
		}
		if len(t.Term) > 2 {
			bound += math.Abs(t.Coef)
		}
		if err := work.AddTerm(t.Term, t.Coef); err != nil {
			return nil, err
		}
	}
	if s.penalty == 0 {
		s.penalty = 1 + bound
	}

	r := &Reduction{Ancillas: make(map[Ancilla][2]qubo.Label), Penalty: s.penalty}
	for {
		target, ok := mostCommonPair(work)
		if !ok {
			break
		}
		z := Ancilla(len(r.Ancillas))
		r.Ancillas[z] = [2]qubo.Label{target.a, target.b}
		next, err := substitute(work, target, z)
		if err != nil {
			return nil, err
		}
		lam := s.penalty
		for _, t := range []qubo.Monomial{
			{Term: qubo.Term{z}, Coef: 3 * lam},
			{Term: qubo.Term{target.a, target.b}, Coef: lam},
			{Term: qubo.Term{target.a, z}, Coef: -2 * lam},
			{Term: qubo.Term{target.b, z}, Coef: -2 * lam},
		} {
			if err := next.AddTerm(t.Term, t.Coef); err != nil {
				return nil, err
			}
		}
		work = next
	}
	work.Clean()

	r.Poly = qubo.NewPoly(qubo.Quadratic)
	if err := r.Poly.AddPoly(work); err != nil {
		return nil, err
	}
	return r, nil
}

// mostCommonPair counts label pairs over the terms of degree three or
// more. Ties go to the pair seen first.
func mostCommonPair(p *qubo.Poly) (pair, bool) {
	counts := make(map[pair]int)
	var order []pair
	for _, t := range p.Terms() {
		if t.Coef == 0 || len(t.Term) <= 2 {
			continue
		}
		for i := range t.Term {
			for j := i + 1; j < len(t.Term); j++ {
				k := pair{t.Term[i], t.Term[j]}
				if _, ok := counts[k]; !ok {
					order = append(order, k)
				}
				counts[k]++
			}
		}
	}
	if len(order) == 0 {
		return pair{}, false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}

func substitute(p *qubo.Poly, target pair, z Ancilla) (*qubo.Poly, error) {
	next := qubo.NewPoly(qubo.HigherOrder)
	for _, t := range p.Terms() {
		if t.Coef == 0 {
			continue
		}
		term := t.Term
		if len(term) > 2 && contains(term, target.a) && contains(term, target.b) {
			rewritten := qubo.Term{z}
			for _, l := range term {
				if l != target.a && l != target.b {
					rewritten = append(rewritten, l)
				}
			}
			term = rewritten
		}
		if err := next.AddTerm(term, t.Coef); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func contains(t qubo.Term, l qubo.Label) bool {
	for _, x := range t {
		if x == l {
			return true
		}
	}
	return false
}
