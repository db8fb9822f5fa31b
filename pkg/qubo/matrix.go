package qubo

import (
	"maps"
	"slices"
	"sort"
)

// Solution assigns a value to each integer-labelled variable: 0 or 1 for a
// QUBO, -1 or 1 for an Ising model.
type Solution map[int]int

// SolutionFromSlice builds a Solution where values[i] is the value of
// variable i.
func SolutionFromSlice(values []int) Solution {
	s := make(Solution, len(values))
	for i, v := range values {
		s[i] = v
	}
	return s
}

// Slice returns the values of variables 0..n-1.
func (s Solution) Slice(n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		v, ok := s[i]
		if !ok {
			return nil, MissingVariable(i)
		}
		out[i] = v
	}
	return out, nil
}

// QUBOMatrix is an upper triangular QUBO over non-negative integer labels.
// The term (i,) holds Q_ii, (i, j) with i < j holds Q_ij and () holds the
// offset. Terms with a repeated index such as (i, i) collapse onto (i,).
type QUBOMatrix struct {
	Poly
	declared
}

// NewQUBOMatrix returns an empty QUBO.
func NewQUBOMatrix() *QUBOMatrix {
	q := &QUBOMatrix{}
	q.init(IntQuadratic)
	return q
}

// Copy returns a deep copy of q.
func (q *QUBOMatrix) Copy() *QUBOMatrix {
	return &QUBOMatrix{Poly: *q.Poly.Copy(), declared: q.declared.clone()}
}

// Indices returns the sorted variable indices with a nonzero coefficient.
func (q *QUBOMatrix) Indices() []int {
	return indices(&q.Poly)
}

// NumBinaryVariables returns the number of distinct variables used.
func (q *QUBOMatrix) NumBinaryVariables() int {
	return len(q.Indices())
}

// Value evaluates the QUBO for a 0/1 assignment.
func (q *QUBOMatrix) Value(s Solution) (float64, error) {
	return evaluate(&q.Poly, s)
}

// ToIsing converts q to the equivalent Ising model.
func (q *QUBOMatrix) ToIsing() *IsingMatrix {
	return QUBOToIsing(q)
}

// IsingMatrix is an Ising model over non-negative integer labels. The term
// (i,) holds the field h_i, (i, j) with i < j holds the coupling J_ij and
// () holds the offset.
type IsingMatrix struct {
	Poly
	declared
}

// NewIsingMatrix returns an empty Ising model.
func NewIsingMatrix() *IsingMatrix {
	m := &IsingMatrix{}
	m.init(IntQuadratic)
	return m
}

// Copy returns a deep copy of m.
func (m *IsingMatrix) Copy() *IsingMatrix {
	return &IsingMatrix{Poly: *m.Poly.Copy(), declared: m.declared.clone()}
}

// Field returns h.
func (m *IsingMatrix) Field() map[int]float64 {
	h := make(map[int]float64)
	for _, t := range m.Terms() {
		if len(t.Term) == 1 && t.Coef != 0 {
			h[t.Term[0].(int)] = t.Coef
		}
	}
	return h
}

// Coupling returns J keyed by ordered index pairs.
func (m *IsingMatrix) Coupling() map[[2]int]float64 {
	j := make(map[[2]int]float64)
	for _, t := range m.Terms() {
		if len(t.Term) == 2 && t.Coef != 0 {
			j[[2]int{t.Term[0].(int), t.Term[1].(int)}] = t.Coef
		}
	}
	return j
}

// Indices returns the sorted spin indices with a nonzero coefficient.
func (m *IsingMatrix) Indices() []int {
	return indices(&m.Poly)
}

// NumBinaryVariables returns the number of distinct spins used.
func (m *IsingMatrix) NumBinaryVariables() int {
	return len(m.Indices())
}

// Value evaluates the model for a -1/1 assignment.
func (m *IsingMatrix) Value(s Solution) (float64, error) {
	return evaluate(&m.Poly, s)
}

// ToQUBO converts m to the equivalent QUBO.
func (m *IsingMatrix) ToQUBO() *QUBOMatrix {
	return IsingToQUBO(m)
}

// QUBOToIsing rewrites q with x = (1+s)/2. The offset of the result is
// chosen so both models take the same value on corresponding assignments.
func QUBOToIsing(q *QUBOMatrix) *IsingMatrix {
	m := NewIsingMatrix()
	for _, t := range q.Terms() {
		c := t.Coef
		switch len(t.Term) {
		case 0:
			m.AddConstant(c)
		case 1:
			m.AddConstant(c / 2)
			mustAdd(&m.Poly, c/2, t.Term[0])
		case 2:
			i, j := t.Term[0], t.Term[1]
			m.AddConstant(c / 4)
			mustAdd(&m.Poly, c/4, i)
			mustAdd(&m.Poly, c/4, j)
			mustAdd(&m.Poly, c/4, i, j)
		}
	}
	m.Clean()
	m.declared = q.declared.clone()
	return m
}

// IsingToQUBO rewrites m with s = 2x-1.
func IsingToQUBO(m *IsingMatrix) *QUBOMatrix {
	q := NewQUBOMatrix()
	for _, t := range m.Terms() {
		c := t.Coef
		switch len(t.Term) {
		case 0:
			q.AddConstant(c)
		case 1:
			mustAdd(&q.Poly, 2*c, t.Term[0])
			q.AddConstant(-c)
		case 2:
			i, j := t.Term[0], t.Term[1]
			mustAdd(&q.Poly, 4*c, i, j)
			mustAdd(&q.Poly, -2*c, i)
			mustAdd(&q.Poly, -2*c, j)
			q.AddConstant(c)
		}
	}
	q.Clean()
	q.declared = m.declared.clone()
	return q
}

func mustAdd(p *Poly, coef float64, labels ...Label) {
	if err := p.Add(coef, labels...); err != nil {
		panic("qubo: " + err.Error())
	}
}

// declared records variables that belong to a model even when none of its
// terms uses them, such as a label whose terms cancelled. Solvers assign
// them a value like any other variable.
type declared struct {
	indices map[int]struct{}
}

// Declare adds indices to the declared variables.
func (d *declared) Declare(indices ...int) {
	if d.indices == nil {
		d.indices = make(map[int]struct{}, len(indices))
	}
	for _, i := range indices {
		d.indices[i] = struct{}{}
	}
}

// Declared returns the sorted declared indices.
func (d *declared) Declared() []int {
	return slices.Sorted(maps.Keys(d.indices))
}

func (d declared) clone() declared {
	return declared{indices: maps.Clone(d.indices)}
}

func indices(p *Poly) []int {
	vars := p.Variables()
	out := make([]int, len(vars))
	for i, v := range vars {
		out[i] = v.(int)
	}
	sort.Ints(out)
	return out
}

func evaluate(p *Poly, s Solution) (float64, error) {
	return p.evaluate(func(l Label) (int, error) {
		v, ok := s[l.(int)]
		if !ok {
			return 0, MissingVariable(l.(int))
		}
		return v, nil
	})
}
