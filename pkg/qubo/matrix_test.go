package qubo_test

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/quboform/pkg/qubo"
)

func coefficients(p *qubo.Poly) map[string]float64 {
	out := map[string]float64{}
	for _, t := range p.Terms() {
		if t.Coef != 0 {
			out[t.Term.String()] = t.Coef
		}
	}
	return out
}

func assignments(n int, values [2]int) []qubo.Solution {
	var out []qubo.Solution
	for mask := 0; mask < 1<<n; mask++ {
		s := qubo.Solution{}
		for i := 0; i < n; i++ {
			s[i] = values[(mask>>i)&1]
		}
		out = append(out, s)
	}
	return out
}

var _ = Describe("QUBOMatrix", func() {
	var q *qubo.QUBOMatrix

	BeforeEach(func() {
		q = qubo.NewQUBOMatrix()
		Expect(q.Add(1, 0)).To(Succeed())
		Expect(q.Add(2, 1, 0)).To(Succeed())
		Expect(q.Add(-0.3, 1, 2)).To(Succeed())
		Expect(q.Add(0.7, 2)).To(Succeed())
		q.AddConstant(3)
	})

	It("should only accept non-negative integer labels", func() {
		Expect(q.Add(1, "a")).To(MatchError(qubo.ErrInvalidKey))
		Expect(q.Add(1, 0, 1, 2)).To(MatchError(qubo.ErrInvalidKey))
	})

	It("should collapse diagonal entries", func() {
		Expect(q.Add(1, 0, 0)).To(Succeed())
		Expect(q.Get(0)).To(Equal(2.0))
	})

	It("should convert to the Ising model", func() {
		m := q.ToIsing()
		Expect(m.Offset()).To(BeNumerically("~", 3+0.5+0.5-0.075+0.35, 1e-12))
		Expect(m.Field()).To(HaveKeyWithValue(0, BeNumerically("~", 1.0, 1e-12)))
		Expect(m.Coupling()).To(HaveKeyWithValue([2]int{0, 1}, BeNumerically("~", 0.5, 1e-12)))
	})

	It("should agree with its Ising model on every assignment", func() {
		m := q.ToIsing()
		for _, s := range assignments(3, [2]int{0, 1}) {
			spins := qubo.Solution{}
			for i, x := range s {
				spins[i] = 2*x - 1
			}
			qv, err := q.Value(s)
			Expect(err).ToNot(HaveOccurred())
			iv, err := m.Value(spins)
			Expect(err).ToNot(HaveOccurred())
			Expect(iv).To(BeNumerically("~", qv, 1e-9))
		}
	})

	It("should survive a round trip through the Ising model", func() {
		back := q.ToIsing().ToQUBO()
		Expect(cmp.Diff(coefficients(&q.Poly), coefficients(&back.Poly), cmpopts.EquateApprox(0, 1e-12))).To(BeEmpty())
	})

	It("should report missing variables", func() {
		_, err := q.Value(qubo.Solution{0: 1})
		Expect(err).To(MatchError(qubo.ErrMissingVariable))
		Expect(err).To(Equal(qubo.MissingVariable(1)))
	})

	It("should count its variables", func() {
		Expect(q.Indices()).To(Equal([]int{0, 1, 2}))
		Expect(q.NumBinaryVariables()).To(Equal(3))
	})

	It("should carry declared variables through copies and conversions", func() {
		Expect(q.Declared()).To(BeEmpty())
		q.Declare(4, 1, 4)
		Expect(q.Declared()).To(Equal([]int{1, 4}))
		Expect(q.Copy().Declared()).To(Equal([]int{1, 4}))
		Expect(q.ToIsing().Declared()).To(Equal([]int{1, 4}))
		Expect(q.ToIsing().ToQUBO().Declared()).To(Equal([]int{1, 4}))

		c := q.Copy()
		c.Declare(7)
		Expect(q.Declared()).To(Equal([]int{1, 4}))
		Expect(q.Indices()).To(Equal([]int{0, 1, 2}))
	})
})

var _ = Describe("IsingMatrix", func() {
	It("should survive a round trip through the QUBO", func() {
		m := qubo.NewIsingMatrix()
		Expect(m.Add(0.5, 0)).To(Succeed())
		Expect(m.Add(-1, 0, 2)).To(Succeed())
		Expect(m.Add(0.25, 1, 2)).To(Succeed())
		m.AddConstant(-2)

		back := qubo.QUBOToIsing(qubo.IsingToQUBO(m))
		Expect(cmp.Diff(coefficients(&m.Poly), coefficients(&back.Poly), cmpopts.EquateApprox(0, 1e-12))).To(BeEmpty())

		q := m.ToQUBO()
		for _, s := range assignments(3, [2]int{-1, 1}) {
			x := qubo.Solution{}
			for i, v := range s {
				x[i] = (v + 1) / 2
			}
			iv, err := m.Value(s)
			Expect(err).ToNot(HaveOccurred())
			qv, err := q.Value(x)
			Expect(err).ToNot(HaveOccurred())
			Expect(qv).To(BeNumerically("~", iv, 1e-9))
		}
	})
})

var _ = Describe("Solution", func() {
	It("should convert between slices and maps", func() {
		s := qubo.SolutionFromSlice([]int{1, 0, 1})
		Expect(s).To(Equal(qubo.Solution{0: 1, 1: 0, 2: 1}))
		v, err := s.Slice(3)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal([]int{1, 0, 1}))
		_, err = s.Slice(4)
		Expect(err).To(MatchError(qubo.ErrMissingVariable))
	})
})
