package problems_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/quboform/pkg/problems"
)

var _ = Describe("ParseCall", func() {
	It("should parse literals of every kind", func() {
		name, args, err := problems.ParseCall(`F(1, -2.5, "x y", (1,), {3, 1, 1}, [true, nil], k=-3, j=false)`)
		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(Equal("F"))
		Expect(args.Positional).To(Equal([]any{
			1,
			-2.5,
			"x y",
			problems.Tuple{1},
			problems.Set{1, 3},
			problems.List{true, nil},
		}))
		Expect(args.Keyword).To(Equal(map[string]any{"k": -3, "j": false}))
	})

	It("should parse nested containers", func() {
		_, args, err := problems.ParseCall(`G({("b", 2), ("a", 1)}, ())`)
		Expect(err).ToNot(HaveOccurred())
		Expect(args.Positional).To(Equal([]any{
			problems.Set{problems.Tuple{"a", 1}, problems.Tuple{"b", 2}},
			problems.Tuple{},
		}))
	})

	It("should accept an empty argument list", func() {
		name, args, err := problems.ParseCall("H()")
		Expect(err).ToNot(HaveOccurred())
		Expect(name).To(Equal("H"))
		Expect(args.Positional).To(BeEmpty())
		Expect(args.Keyword).To(BeEmpty())
	})

	DescribeTable("should reject malformed input",
		func(s string) {
			_, _, err := problems.ParseCall(s)
			Expect(err).To(HaveOccurred())
		},
		Entry("unterminated", "F(1"),
		Entry("positional after keyword", "F(k=1, 2)"),
		Entry("trailing text", "F(1) x"),
		Entry("bare identifier", "F(a)"),
		Entry("missing name", "(1)"),
		Entry("repeated keyword", "F(k=1, k=2)"),
		Entry("negated string", `F(-"x")`),
		Entry("unterminated string", `F("x)`),
	)
})

var _ = Describe("Registry", func() {
	It("should refuse duplicate names", func() {
		r := problems.NewRegistry()
		ctor := func(problems.Args) (problems.Problem, error) { return newUnformulated(), nil }
		Expect(r.Register("U", ctor)).To(Succeed())
		Expect(r.Register("U", ctor)).ToNot(Succeed())
		Expect(r.Names()).To(Equal([]string{"U"}))
	})

	It("should refuse unknown problems", func() {
		_, err := problems.NewRegistry().Parse("Nope()")
		Expect(err).To(MatchError(ContainSubstring("unknown problem")))
	})
})
