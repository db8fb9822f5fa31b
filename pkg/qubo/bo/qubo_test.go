package bo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/bo"
)

var _ = Describe("QUBO", func() {
	var q *bo.QUBO

	BeforeEach(func() {
		q = bo.NewQUBO()
		Expect(q.Add(1, "x", "y")).To(Succeed())
		Expect(q.Add(-2, "y")).To(Succeed())
		Expect(q.Add(3, "z", "x")).To(Succeed())
		q.AddConstant(0.5)
	})

	It("should number labels in the order they are first seen", func() {
		Expect(q.Mapping()).To(Equal(map[qubo.Label]int{"x": 0, "y": 1, "z": 2}))
		Expect(q.NumBinaryVariables()).To(Equal(3))
	})

	It("should keep the mapping a bijection", func() {
		reverse := q.ReverseMapping()
		for l, i := range q.Mapping() {
			Expect(reverse[i]).To(Equal(l))
		}
	})

	It("should relabel terms for the QUBO matrix", func() {
		m := q.ToQUBO()
		Expect(m.Get(0, 1)).To(Equal(1.0))
		Expect(m.Get(1)).To(Equal(-2.0))
		Expect(m.Get(0, 2)).To(Equal(3.0))
		Expect(m.Offset()).To(Equal(0.5))
	})

	It("should reject terms with three distinct labels", func() {
		Expect(q.Add(1, "a", "b", "c")).To(MatchError(qubo.ErrInvalidKey))
		Expect(q.Len()).To(Equal(4))
		_, ok := q.Mapping()["a"]
		Expect(ok).To(BeFalse())
	})

	It("should keep stale labels until refreshed", func() {
		Expect(q.Add(-3, "x", "z")).To(Succeed())
		Expect(q.Mapping()).To(HaveKey("z"))

		q.Refresh()
		Expect(q.Mapping()).To(Equal(map[qubo.Label]int{"x": 0, "y": 1}))
		Expect(q.ToQUBO().Indices()).To(Equal([]int{0, 1}))
	})

	It("should convert solutions given as slices or maps", func() {
		fromSlice, err := q.ConvertSolution(qubo.SolutionFromSlice([]int{1, 0, 1}))
		Expect(err).ToNot(HaveOccurred())
		fromMap, err := q.ConvertSolution(qubo.Solution{2: 1, 0: 1, 1: 0})
		Expect(err).ToNot(HaveOccurred())
		Expect(fromSlice).To(Equal(fromMap))
		Expect(fromMap).To(Equal(map[qubo.Label]int{"x": 1, "y": 0, "z": 1}))
	})

	It("should accept spin solutions", func() {
		values, err := q.ConvertSolution(qubo.Solution{0: -1, 1: 1, 2: -1})
		Expect(err).ToNot(HaveOccurred())
		Expect(values).To(Equal(map[qubo.Label]int{"x": 0, "y": 1, "z": 0}))
	})

	It("should fail on short solutions", func() {
		_, err := q.ConvertSolution(qubo.SolutionFromSlice([]int{1}))
		Expect(err).To(MatchError(qubo.ErrMissingVariable))
	})

	It("should honour an explicit mapping", func() {
		Expect(q.SetMapping(map[qubo.Label]int{"z": 0, "y": 5})).To(Succeed())
		Expect(q.Mapping()).To(Equal(map[qubo.Label]int{"z": 0, "y": 5, "x": 6}))
		m := q.ToQUBO()
		Expect(m.Get(0, 6)).To(Equal(3.0))
	})

	It("should give the same value before and after conversion", func() {
		values := map[qubo.Label]int{"x": 1, "y": 1, "z": 0}
		v, err := q.Value(values)
		Expect(err).ToNot(HaveOccurred())
		mv, err := q.ToQUBO().Value(qubo.Solution{0: 1, 1: 1, 2: 0})
		Expect(err).ToNot(HaveOccurred())
		Expect(mv).To(Equal(v))

		iv, err := q.ToIsing().Value(qubo.Solution{0: 1, 1: 1, 2: -1})
		Expect(err).ToNot(HaveOccurred())
		Expect(iv).To(BeNumerically("~", v, 1e-12))
	})
})
