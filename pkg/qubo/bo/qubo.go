package bo

import (
	"github.com/operator-framework/quboform/pkg/qubo"
)

// QUBO is a quadratic polynomial over arbitrary labels. Every term has at
// most two distinct labels. ToQUBO numbers the labels densely so the
// result can be handed to any QUBO solver, and ConvertSolution maps the
// solver's answer back.
//
// It is generally cheaper to build a QUBO term by term than to copy a
// finished polynomial into it.
type QUBO struct {
	core
}

// NewQUBO returns an empty QUBO.
func NewQUBO() *QUBO {
	return &QUBO{core: newCore(qubo.Quadratic)}
}

// ToQUBO returns the upper triangular QUBOMatrix over the mapped indices.
func (q *QUBO) ToQUBO() *qubo.QUBOMatrix {
	m, err := q.relabel(q.poly, nil)
	if err != nil {
		// every stored label is tracked by the mapper
		panic("bo: " + err.Error())
	}
	return m
}

// ToIsing returns the Ising model equivalent to ToQUBO.
func (q *QUBO) ToIsing() *qubo.IsingMatrix {
	return qubo.QUBOToIsing(q.ToQUBO())
}
