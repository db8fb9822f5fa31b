package problems

import (
	"context"

	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/solver"
)

// Solvable is a problem whose QUBO solutions can be translated back into
// problem-domain answers of type S.
type Solvable[S any] interface {
	ToQUBO(opts ...Option) (*qubo.QUBOMatrix, error)
	ConvertSolution(sol qubo.Solution) (S, error)
}

// SolveBruteforce formulates p as a QUBO, minimises it exhaustively and
// converts the first optimal assignment. Only suitable for small
// problems; see solver.MaxVariables.
func SolveBruteforce[S any](ctx context.Context, p Solvable[S], opts ...Option) (S, error) {
	var zero S
	res, err := bruteforce(ctx, p, opts, false)
	if err != nil {
		return zero, err
	}
	return p.ConvertSolution(res.Best())
}

// SolveBruteforceAll is SolveBruteforce returning the conversion of every
// optimal assignment.
func SolveBruteforceAll[S any](ctx context.Context, p Solvable[S], opts ...Option) ([]S, error) {
	res, err := bruteforce(ctx, p, opts, true)
	if err != nil {
		return nil, err
	}
	out := make([]S, 0, len(res.Solutions))
	for _, sol := range res.Solutions {
		s, err := p.ConvertSolution(sol)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func bruteforce[S any](ctx context.Context, p Solvable[S], opts []Option, all bool) (*solver.Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	q, err := p.ToQUBO(opts...)
	if err != nil {
		return nil, err
	}
	solverOpts := cfg.Solver
	if all {
		solverOpts = append(solverOpts, solver.WithAllSolutions())
	}
	return solver.SolveQUBO(ctx, q, solverOpts...)
}
