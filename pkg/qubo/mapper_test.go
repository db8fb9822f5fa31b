package qubo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/quboform/pkg/qubo"
)

var _ = Describe("LabelMapper", func() {
	var m *qubo.LabelMapper

	BeforeEach(func() {
		m = qubo.NewLabelMapper()
	})

	It("should hand out dense indices in first seen order", func() {
		Expect(m.Index("b")).To(Equal(0))
		Expect(m.Index("a")).To(Equal(1))
		Expect(m.Index("b")).To(Equal(0))
		Expect(m.Len()).To(Equal(2))
		Expect(m.Next()).To(Equal(2))
	})

	It("should keep mapping and reverse mapping inverse", func() {
		for _, l := range []qubo.Label{"x", 7, "y"} {
			m.Index(l)
		}
		reverse := m.ReverseMapping()
		for l, i := range m.Mapping() {
			Expect(reverse[i]).To(Equal(l))
		}
	})

	It("should return copies", func() {
		m.Index("a")
		mapping := m.Mapping()
		mapping["b"] = 5
		Expect(m.Len()).To(Equal(1))
		_, ok := m.Lookup("b")
		Expect(ok).To(BeFalse())
	})

	It("should number new labels after an explicit mapping", func() {
		Expect(m.Set(map[qubo.Label]int{"a": 3, "b": 0})).To(Succeed())
		Expect(m.Index("c")).To(Equal(4))
		l, ok := m.LabelOf(3)
		Expect(ok).To(BeTrue())
		Expect(l).To(Equal("a"))
	})

	It("should reject invalid explicit mappings", func() {
		Expect(m.Set(map[qubo.Label]int{"a": -1})).ToNot(Succeed())
		Expect(m.Set(map[qubo.Label]int{"a": 1, "b": 1})).ToNot(Succeed())
		Expect(m.Set(map[qubo.Label]int{int64(1): 0, 1: 1})).ToNot(Succeed())
	})

	It("should forget everything on reset", func() {
		m.Index("a")
		m.Reset()
		Expect(m.Len()).To(Equal(0))
		Expect(m.Index("z")).To(Equal(0))
	})
})
