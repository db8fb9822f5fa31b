package qubo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/quboform/pkg/qubo"
)

type point struct{ x, y int }

var _ = Describe("Poly", func() {
	var p *qubo.Poly

	BeforeEach(func() {
		p = qubo.NewPoly(qubo.HigherOrder)
	})

	It("should accumulate repeated insertions", func() {
		Expect(p.Add(1.5, "a", "b")).To(Succeed())
		Expect(p.Add(2, "a", "b")).To(Succeed())

		q := qubo.NewPoly(qubo.HigherOrder)
		Expect(q.Add(3.5, "a", "b")).To(Succeed())

		Expect(p.Get("a", "b")).To(Equal(3.5))
		Expect(p.Equal(q)).To(BeTrue())
		Expect(p.Len()).To(Equal(1))
	})

	It("should treat permutations of a term as the same term", func() {
		Expect(p.Add(1, "b", "a", 0)).To(Succeed())
		Expect(p.Add(1, 0, "a", "b")).To(Succeed())
		Expect(p.Get("a", 0, "b")).To(Equal(2.0))
		Expect(p.Terms()).To(Equal([]qubo.Monomial{{Term: qubo.Term{0, "a", "b"}, Coef: 2}}))
	})

	It("should collapse repeated labels", func() {
		Expect(p.Add(1, "x", "x")).To(Succeed())
		Expect(p.Add(1, "x")).To(Succeed())
		Expect(p.Get("x")).To(Equal(2.0))
		Expect(p.Degree()).To(Equal(1))
	})

	It("should normalise integer labels", func() {
		Expect(p.Add(1, int64(3))).To(Succeed())
		Expect(p.Add(1, uint8(3))).To(Succeed())
		Expect(p.Get(3)).To(Equal(2.0))
	})

	It("should reject unsigned labels beyond the int range", func() {
		Expect(p.Add(1, -1)).To(Succeed())
		Expect(p.Add(1, uint64(math.MaxUint64))).To(MatchError(qubo.ErrInvalidKey))
		Expect(p.Add(1, uint(math.MaxUint))).To(MatchError(qubo.ErrInvalidKey))
		Expect(p.Add(1, uint64(math.MaxInt))).To(Succeed())
		Expect(p.Get(-1)).To(Equal(1.0))
		Expect(p.Get(math.MaxInt)).To(Equal(1.0))

		_, err := qubo.NormalizeLabel(uint64(math.MaxInt) + 1)
		Expect(err).To(MatchError(qubo.ErrInvalidKey))
	})

	It("should accept any comparable label", func() {
		Expect(p.Add(1, point{1, 2}, "a")).To(Succeed())
		Expect(p.Get("a", point{1, 2})).To(Equal(1.0))
		Expect(p.Variables()).To(Equal([]qubo.Label{"a", point{1, 2}}))
	})

	It("should reject malformed labels without mutating", func() {
		Expect(p.Add(1, "a", nil)).To(MatchError(qubo.ErrInvalidKey))
		Expect(p.Add(1, []int{1})).To(MatchError(qubo.ErrInvalidKey))
		Expect(p.Len()).To(Equal(0))
	})

	It("should report absent terms as zero", func() {
		Expect(p.Get("nope")).To(Equal(0.0))
		Expect(p.Has("nope")).To(BeFalse())
	})

	It("should keep zero terms until cleaned", func() {
		Expect(p.Add(1, "a")).To(Succeed())
		Expect(p.Add(-1, "a")).To(Succeed())
		Expect(p.Has("a")).To(BeTrue())
		Expect(p.Variables()).To(BeEmpty())

		p.Clean()
		Expect(p.Has("a")).To(BeFalse())
		Expect(p.Len()).To(Equal(0))
	})

	It("should overwrite with Set and remove with Delete", func() {
		Expect(p.Add(1, "a")).To(Succeed())
		Expect(p.Set(5, "a")).To(Succeed())
		Expect(p.Get("a")).To(Equal(5.0))
		Expect(p.Delete("a")).To(Succeed())
		Expect(p.Has("a")).To(BeFalse())
		Expect(p.Delete("a")).To(Succeed())
	})

	It("should track the offset as the empty term", func() {
		p.AddConstant(-1.5)
		Expect(p.Add(2)).To(Succeed())
		Expect(p.Offset()).To(Equal(0.5))
		Expect(p.Degree()).To(Equal(0))
	})

	It("should multiply polynomials", func() {
		a := qubo.NewPoly(qubo.HigherOrder)
		a.AddConstant(1)
		Expect(a.Add(-1, "x")).To(Succeed())
		b := qubo.NewPoly(qubo.HigherOrder)
		b.AddConstant(1)
		Expect(b.Add(-1, "y")).To(Succeed())

		prod, err := a.Mul(b)
		Expect(err).ToNot(HaveOccurred())
		Expect(prod.Offset()).To(Equal(1.0))
		Expect(prod.Get("x")).To(Equal(-1.0))
		Expect(prod.Get("y")).To(Equal(-1.0))
		Expect(prod.Get("x", "y")).To(Equal(1.0))

		square, err := a.Mul(a)
		Expect(err).ToNot(HaveOccurred())
		square.Clean()
		Expect(square.Equal(a)).To(BeTrue())
	})

	It("should add and subtract polynomials", func() {
		o := qubo.NewPoly(qubo.HigherOrder)
		Expect(o.Add(2, "a", "b", "c")).To(Succeed())
		Expect(p.AddPoly(o)).To(Succeed())
		Expect(p.SubPoly(o)).To(Succeed())
		Expect(p.Get("a", "b", "c")).To(Equal(0.0))
	})

	It("should evaluate assignments", func() {
		Expect(p.Add(2, "a", "b")).To(Succeed())
		Expect(p.Add(-1, "a")).To(Succeed())
		p.AddConstant(3)

		v, err := p.Value(map[qubo.Label]int{"a": 1, "b": 1})
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(4.0))

		_, err = p.Value(map[qubo.Label]int{"a": 1})
		Expect(err).To(MatchError(qubo.ErrMissingVariable))
	})

	It("should render terms in insertion order", func() {
		Expect(p.Add(5, "a")).To(Succeed())
		p.AddConstant(-1.5)
		Expect(p.Add(2, 1, 0)).To(Succeed())
		Expect(p.String()).To(Equal(`{("a",): 5, (): -1.5, (0, 1): 2}`))
	})

	It("should not share state with copies", func() {
		Expect(p.Add(1, "a")).To(Succeed())
		c := p.Copy()
		Expect(c.Add(1, "a")).To(Succeed())
		Expect(p.Get("a")).To(Equal(1.0))
		Expect(c.Get("a")).To(Equal(2.0))
	})

	It("should forget dead labels on refresh", func() {
		Expect(p.Add(1, "a", "b")).To(Succeed())
		Expect(p.Add(1, "c")).To(Succeed())
		Expect(p.Add(-1, "a", "b")).To(Succeed())
		p.Refresh()
		Expect(p.Len()).To(Equal(1))
		Expect(p.Variables()).To(Equal([]qubo.Label{"c"}))
	})

	Context("with a quadratic policy", func() {
		BeforeEach(func() {
			p = qubo.NewPoly(qubo.Quadratic)
		})

		It("should reject terms of three distinct labels", func() {
			err := p.Add(1, 0, 1, 2)
			Expect(err).To(MatchError(qubo.ErrInvalidKey))
			var ke *qubo.KeyError
			Expect(err).To(BeAssignableToTypeOf(ke))
			Expect(err.Error()).To(ContainSubstring("must be a tuple of <= 2 unique elements"))
			Expect(p.Len()).To(Equal(0))
		})

		It("should accept three labels that collapse to two", func() {
			Expect(p.Add(1, 0, 1, 0)).To(Succeed())
			Expect(p.Get(0, 1)).To(Equal(1.0))
		})

		It("should reject a higher order polynomial atomically", func() {
			o := qubo.NewPoly(qubo.HigherOrder)
			Expect(o.Add(1, "a")).To(Succeed())
			Expect(o.Add(1, "a", "b", "c")).To(Succeed())
			Expect(p.AddPoly(o)).To(MatchError(qubo.ErrInvalidKey))
			Expect(p.Len()).To(Equal(0))
		})
	})

	Context("with an integer quadratic policy", func() {
		It("should reject non integer and negative labels", func() {
			p = qubo.NewPoly(qubo.IntQuadratic)
			Expect(p.Add(1, "a")).To(MatchError(qubo.ErrInvalidKey))
			Expect(p.Add(1, -1)).To(MatchError(qubo.ErrInvalidKey))
			Expect(p.Add(1, 0, 3)).To(Succeed())
		})
	})
})

var _ = Describe("SortLabels", func() {
	It("should order integers before strings before other labels", func() {
		labels := []qubo.Label{"b", point{0, 0}, 10, "a", 2}
		qubo.SortLabels(labels)
		Expect(labels).To(Equal([]qubo.Label{2, 10, "a", "b", point{0, 0}}))
	})
})
