package problems_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/quboform/pkg/problems"
	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/solver"
)

// spinChain is a ring-free chain of spins coupled with weight J, written
// as an Ising model.
type spinChain struct {
	problems.Base
	n      int
	weight float64
}

func newSpinChain(n int, weight float64) *spinChain {
	s := &spinChain{n: n, weight: weight}
	s.Base = problems.NewBase(s, "SpinChain", []any{n}, map[string]any{"weight": weight})
	return s
}

func (s *spinChain) NumBinaryVariables() int {
	return s.n
}

func (s *spinChain) FormulateIsing(m problems.Multipliers) (*qubo.IsingMatrix, error) {
	j := m.Get("J", s.weight)
	im := qubo.NewIsingMatrix()
	for i := 0; i+1 < s.n; i++ {
		if err := im.Add(j, i, i+1); err != nil {
			return nil, err
		}
	}
	return im, nil
}

func (s *spinChain) ConvertSolution(sol qubo.Solution) ([]int, error) {
	return sol.Slice(s.n)
}

type unformulated struct {
	problems.Base
}

func newUnformulated() *unformulated {
	u := &unformulated{}
	u.Base = problems.NewBase(u, "Unformulated", nil, nil)
	return u
}

func (u *unformulated) NumBinaryVariables() int { return 0 }

func registry() *problems.Registry {
	r := problems.NewRegistry()
	Expect(r.Register("SpinChain", func(args problems.Args) (problems.Problem, error) {
		if len(args.Positional) != 1 {
			return nil, fmt.Errorf("SpinChain takes one positional argument")
		}
		n, ok := args.Positional[0].(int)
		if !ok {
			return nil, fmt.Errorf("n must be an int")
		}
		w, ok := args.Keyword["weight"].(float64)
		if !ok {
			return nil, fmt.Errorf("weight must be a float")
		}
		return newSpinChain(n, w), nil
	})).To(Succeed())
	return r
}

var _ = Describe("Base", func() {
	It("should derive the QUBO from the Ising model", func() {
		s := newSpinChain(3, 1)
		im, err := s.ToIsing()
		Expect(err).ToNot(HaveOccurred())
		q, err := s.ToQUBO()
		Expect(err).ToNot(HaveOccurred())
		Expect(q.Poly.EqualApprox(&im.ToQUBO().Poly, 1e-12)).To(BeTrue())
		Expect(q.Offset()).To(Equal(2.0))
	})

	It("should pass multipliers to the formulation", func() {
		s := newSpinChain(2, 1)
		im, err := s.ToIsing(problems.WithMultiplier("J", -3))
		Expect(err).ToNot(HaveOccurred())
		Expect(im.Get(0, 1)).To(Equal(-3.0))

		_, err = s.ToIsing(problems.WithMultiplier("", 1))
		Expect(err).To(HaveOccurred())
	})

	It("should fail when neither formulation exists", func() {
		u := newUnformulated()
		_, err := u.ToQUBO()
		Expect(err).To(MatchError(problems.ErrNotImplemented))
		_, err = u.ToIsing()
		Expect(err).To(MatchError(problems.ErrNotImplemented))
	})

	It("should compare construction arguments", func() {
		Expect(newSpinChain(3, 1).Equal(newSpinChain(3, 1))).To(BeTrue())
		Expect(newSpinChain(3, 1).Equal(newSpinChain(4, 1))).To(BeFalse())
		Expect(newSpinChain(3, 1).Equal(newSpinChain(3, 2))).To(BeFalse())
		Expect(newSpinChain(0, 1).Equal(newUnformulated())).To(BeFalse())
		Expect(newSpinChain(3, 1).Equal(nil)).To(BeFalse())
	})

	It("should not leak changes to returned arguments", func() {
		s := newSpinChain(3, 1)
		args := s.Args()
		args.Positional[0] = 10
		args.Keyword["weight"] = 5.0
		Expect(s.Equal(newSpinChain(3, 1))).To(BeTrue())
	})

	It("should render its canonical form", func() {
		Expect(newSpinChain(3, 1).String()).To(Equal("SpinChain(3, weight=1.0)"))
		Expect(newSpinChain(2, -0.25).String()).To(Equal("SpinChain(2, weight=-0.25)"))
		Expect(newUnformulated().String()).To(Equal("Unformulated()"))
	})

	It("should parse its canonical form back", func() {
		r := registry()
		for _, s := range []*spinChain{newSpinChain(3, 1), newSpinChain(5, -0.25)} {
			p, err := r.Parse(s.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Equal(s)).To(BeTrue())
			Expect(s.Equal(p)).To(BeTrue())
		}
	})
})

var _ = Describe("SolveBruteforce", func() {
	It("should convert the optimal assignment", func() {
		s := newSpinChain(3, 1)
		sol, err := problems.SolveBruteforce[[]int](context.Background(), s)
		Expect(err).ToNot(HaveOccurred())
		Expect(sol).To(Equal([]int{0, 1, 0}))
	})

	It("should convert every optimal assignment", func() {
		s := newSpinChain(3, 1)
		sols, err := problems.SolveBruteforceAll[[]int](context.Background(), s,
			problems.WithSolverOptions(solver.WithWorkers(2)))
		Expect(err).ToNot(HaveOccurred())
		Expect(sols).To(Equal([][]int{{0, 1, 0}, {1, 0, 1}}))
	})

	It("should respect the solver limits", func() {
		s := newSpinChain(5, 1)
		_, err := problems.SolveBruteforce[[]int](context.Background(), s,
			problems.WithSolverOptions(solver.WithMaxVariables(3)))
		Expect(err).To(MatchError(solver.ErrTooLarge))
	})
})

var _ = Describe("Multipliers", func() {
	It("should fall back to defaults", func() {
		m := problems.Multipliers{"A": 3}
		Expect(m.Get("A", 2)).To(Equal(3.0))
		Expect(m.Get("B", 1)).To(Equal(1.0))
	})

	It("should parse command line values", func() {
		m, err := problems.ParseMultipliers(map[string]string{"A": "2.5", "B": "1"})
		Expect(err).ToNot(HaveOccurred())
		Expect(m).To(Equal(problems.Multipliers{"A": 2.5, "B": 1}))

		_, err = problems.ParseMultipliers(map[string]string{"A": "lots"})
		Expect(err).To(HaveOccurred())
	})
})
