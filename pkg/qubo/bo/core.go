package bo

import (
	"fmt"

	"github.com/operator-framework/quboform/pkg/qubo"
)

// core is the state shared by QUBO and HOBO: the polynomial over the
// caller's labels and the mapper that numbers those labels.
//
// The mapper grows as terms are added and is never pruned when
// coefficients cancel; Refresh rebuilds it from the live terms.
type core struct {
	poly   *qubo.Poly
	mapper *qubo.LabelMapper
}

func newCore(policy qubo.KeyPolicy) core {
	return core{
		poly:   qubo.NewPoly(policy),
		mapper: qubo.NewLabelMapper(),
	}
}

func (c *core) track(labels []qubo.Label) {
	for _, l := range labels {
		n, err := qubo.NormalizeLabel(l)
		if err != nil {
			continue
		}
		c.mapper.Index(n)
	}
}

func reserved(labels []qubo.Label) error {
	for _, l := range labels {
		if _, ok := l.(Ancilla); ok {
			return &qubo.KeyError{Term: labels, Reason: fmt.Sprintf("%v is reserved for ancilla variables", l)}
		}
	}
	return nil
}

// Add adds coef to the term formed by labels.
func (c *core) Add(coef float64, labels ...qubo.Label) error {
	if err := reserved(labels); err != nil {
		return err
	}
	if err := c.poly.Add(coef, labels...); err != nil {
		return err
	}
	c.track(labels)
	return nil
}

// Set overwrites the coefficient of the term formed by labels.
func (c *core) Set(coef float64, labels ...qubo.Label) error {
	if err := reserved(labels); err != nil {
		return err
	}
	if err := c.poly.Set(coef, labels...); err != nil {
		return err
	}
	c.track(labels)
	return nil
}

// AddConstant adds to the offset.
func (c *core) AddConstant(v float64) {
	c.poly.AddConstant(v)
}

// AddPoly adds every term of p. Nothing is added if any term is rejected.
func (c *core) AddPoly(p *qubo.Poly) error {
	for _, t := range p.Terms() {
		if err := reserved(t.Term); err != nil {
			return err
		}
	}
	if err := c.poly.AddPoly(p); err != nil {
		return err
	}
	for _, t := range p.Terms() {
		c.track(t.Term)
	}
	return nil
}

// Get returns the coefficient of the term formed by labels.
func (c *core) Get(labels ...qubo.Label) float64 {
	return c.poly.Get(labels...)
}

// Delete removes a term. Its labels keep their indices until Refresh.
func (c *core) Delete(labels ...qubo.Label) error {
	return c.poly.Delete(labels...)
}

// Scale multiplies every coefficient by f.
func (c *core) Scale(f float64) {
	c.poly.Scale(f)
}

// Clean drops terms whose coefficient is exactly zero. The mapping is
// left alone.
func (c *core) Clean() {
	c.poly.Clean()
}

// Len returns the number of stored terms, including explicit zeros.
func (c *core) Len() int {
	return c.poly.Len()
}

// Terms returns a copy of the stored terms in insertion order.
func (c *core) Terms() []qubo.Monomial {
	return c.poly.Terms()
}

// Offset returns the constant term.
func (c *core) Offset() float64 {
	return c.poly.Offset()
}

// Degree returns the arity of the largest nonzero term.
func (c *core) Degree() int {
	return c.poly.Degree()
}

// Variables returns the labels of the live terms in label order.
func (c *core) Variables() []qubo.Label {
	return c.poly.Variables()
}

// Poly returns a copy of the underlying polynomial.
func (c *core) Poly() *qubo.Poly {
	return c.poly.Copy()
}

// Value evaluates the polynomial for an assignment keyed by label.
func (c *core) Value(values map[qubo.Label]int) (float64, error) {
	return c.poly.Value(values)
}

func (c *core) String() string {
	return c.poly.String()
}

// Mapping returns a copy of the label to index map.
func (c *core) Mapping() map[qubo.Label]int {
	return c.mapper.Mapping()
}

// ReverseMapping returns a copy of the index to label map.
func (c *core) ReverseMapping() map[int]qubo.Label {
	return c.mapper.ReverseMapping()
}

// NumBinaryVariables returns the number of mapped labels.
func (c *core) NumBinaryVariables() int {
	return c.mapper.Len()
}

// SetMapping replaces the label numbering with explicit. Labels already in
// use but missing from explicit are numbered after the largest explicit
// index, in label order.
func (c *core) SetMapping(explicit map[qubo.Label]int) error {
	for l := range explicit {
		if err := reserved([]qubo.Label{l}); err != nil {
			return err
		}
	}
	if err := c.mapper.Set(explicit); err != nil {
		return err
	}
	for _, l := range c.poly.Variables() {
		c.mapper.Index(l)
	}
	return nil
}

// Refresh drops zero terms and renumbers the labels that are still live,
// in the order they were first inserted. An explicit mapping installed by
// SetMapping is discarded.
func (c *core) Refresh() {
	c.poly.Refresh()
	c.mapper.Reset()
	for _, t := range c.poly.Terms() {
		for _, l := range t.Term {
			c.mapper.Index(l)
		}
	}
}

// ConvertSolution translates a solution of the integer-labelled QUBO or
// Ising model back to the caller's labels. A value of 1 maps to 1 and any
// other value to 0, so both 0/1 and -1/1 solutions are accepted.
func (c *core) ConvertSolution(sol qubo.Solution) (map[qubo.Label]int, error) {
	out := make(map[qubo.Label]int, c.mapper.Len())
	for l, i := range c.mapper.Mapping() {
		v, ok := sol[i]
		if !ok {
			return nil, qubo.MissingVariable(i)
		}
		if v == 1 {
			out[l] = 1
		} else {
			out[l] = 0
		}
	}
	return out, nil
}

// relabel translates the live terms of p to the integer labels of the
// mapper. Labels the mapper does not know are numbered by extra. Every
// mapped index is declared on the result, so solutions of the matrix
// cover labels whose terms have cancelled.
func (c *core) relabel(p *qubo.Poly, extra func(qubo.Label) (int, bool)) (*qubo.QUBOMatrix, error) {
	q := qubo.NewQUBOMatrix()
	for _, t := range p.Terms() {
		if t.Coef == 0 {
			continue
		}
		key := make([]qubo.Label, len(t.Term))
		for i, l := range t.Term {
			idx, ok := c.mapper.Lookup(l)
			if !ok && extra != nil {
				idx, ok = extra(l)
			}
			if !ok {
				return nil, fmt.Errorf("label %s has no index", qubo.FormatLabel(l))
			}
			key[i] = idx
		}
		if err := q.Add(t.Coef, key...); err != nil {
			return nil, err
		}
	}
	q.Clean()
	for _, i := range c.mapper.Mapping() {
		q.Declare(i)
	}
	return q, nil
}
