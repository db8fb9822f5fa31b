package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/quboform/pkg/qubo"
)

// MaxVariables bounds the size of problems SolveQUBO and SolveIsing accept
// by default.
const MaxVariables = 24

// Tolerance is the distance within which two objective values count as
// equal when collecting optimal solutions.
const Tolerance = 1e-9

var (
	ErrIncomplete = errors.New("cancelled before a solution could be found")
	ErrTooLarge   = errors.New("too many variables for an exhaustive search")
)

// Result is the outcome of an exhaustive search.
type Result struct {
	// Value is the minimum of the objective, offset included.
	Value float64
	// Solutions holds the optimal assignments in enumeration order. It
	// has a single element unless WithAllSolutions was given.
	Solutions []qubo.Solution
}

// Best returns the first optimal assignment.
func (r *Result) Best() qubo.Solution {
	if len(r.Solutions) == 0 {
		return nil
	}
	return r.Solutions[0]
}

// SolveQUBO minimises q over every 0/1 assignment of its variables.
func SolveQUBO(ctx context.Context, q *qubo.QUBOMatrix, opts ...Option) (*Result, error) {
	return solve(ctx, &q.Poly, q.Declared(), [2]int{0, 1}, opts)
}

// SolveIsing minimises m over every -1/1 assignment of its spins.
func SolveIsing(ctx context.Context, m *qubo.IsingMatrix, opts ...Option) (*Result, error) {
	return solve(ctx, &m.Poly, m.Declared(), [2]int{-1, 1}, opts)
}

type compiled struct {
	coef float64
	bits []int
}

type candidate struct {
	mask  uint64
	value float64
}

type settings struct {
	all          bool
	workers      int
	maxVariables int
	logger       *logrus.Entry
}

// Option configures a search.
type Option func(s *settings) error

// WithAllSolutions collects every optimal assignment instead of the first.
func WithAllSolutions() Option {
	return func(s *settings) error {
		s.all = true
		return nil
	}
}

// WithWorkers splits the search space across n goroutines.
func WithWorkers(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return fmt.Errorf("worker count must be positive, got %d", n)
		}
		s.workers = n
		return nil
	}
}

// WithMaxVariables overrides MaxVariables. Limits above 62 are rejected.
func WithMaxVariables(n int) Option {
	return func(s *settings) error {
		if n < 0 || n > 62 {
			return fmt.Errorf("variable limit %d out of range", n)
		}
		s.maxVariables = n
		return nil
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *settings) error {
		s.logger = l
		return nil
	}
}

var defaults = []Option{
	func(s *settings) error {
		if s.workers == 0 {
			s.workers = runtime.GOMAXPROCS(0)
		}
		return nil
	},
	func(s *settings) error {
		if s.maxVariables == 0 {
			s.maxVariables = MaxVariables
		}
		return nil
	},
	func(s *settings) error {
		if s.logger == nil {
			s.logger = logrus.NewEntry(logrus.StandardLogger())
		}
		return nil
	},
}

// variables returns the indices used by p together with the declared
// ones, in ascending order.
func variables(p *qubo.Poly, declared []int) []int {
	seen := make(map[int]struct{}, len(declared))
	var out []int
	for _, v := range p.Variables() {
		seen[v.(int)] = struct{}{}
		out = append(out, v.(int))
	}
	for _, i := range declared {
		if _, ok := seen[i]; !ok {
			seen[i] = struct{}{}
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

func solve(ctx context.Context, p *qubo.Poly, declared []int, values [2]int, opts []Option) (*Result, error) {
	s := settings{}
	for _, opt := range append(opts, defaults...) {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	vars := variables(p, declared)
	n := len(vars)
	if n > s.maxVariables {
		return nil, fmt.Errorf("%d variables, limit is %d: %w", n, s.maxVariables, ErrTooLarge)
	}
	position := make(map[int]int, n)
	for i, v := range vars {
		position[v] = i
	}
	var terms []compiled
	for _, t := range p.Terms() {
		if t.Coef == 0 {
			continue
		}
		c := compiled{coef: t.Coef, bits: make([]int, len(t.Term))}
		for i, l := range t.Term {
			c.bits[i] = position[l.(int)]
		}
		terms = append(terms, c)
	}

	total := uint64(1) << uint(n)
	workers := uint64(s.workers)
	if workers > total {
		workers = total
	}
	s.logger.WithFields(logrus.Fields{
		"variables": n,
		"terms":     len(terms),
		"workers":   workers,
	}).Debug("starting exhaustive search")

	found := make([][]candidate, workers)
	g, gctx := errgroup.WithContext(ctx)
	chunk := (total + workers - 1) / workers
	for w := uint64(0); w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, total)
		g.Go(func() error {
			var err error
			found[w], err = scan(gctx, terms, values, lo, hi, s.all)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := math.Inf(1)
	for _, cs := range found {
		for _, c := range cs {
			best = math.Min(best, c.value)
		}
	}
	var optimal []candidate
	for _, cs := range found {
		for _, c := range cs {
			if c.value <= best+Tolerance {
				optimal = append(optimal, c)
			}
		}
	}
	sort.Slice(optimal, func(i, j int) bool { return optimal[i].mask < optimal[j].mask })
	if !s.all {
		optimal = optimal[:1]
	}

	res := &Result{Value: best}
	for _, c := range optimal {
		sol := make(qubo.Solution, n)
		for i, v := range vars {
			sol[v] = values[(c.mask>>uint(i))&1]
		}
		res.Solutions = append(res.Solutions, sol)
	}
	s.logger.WithFields(logrus.Fields{
		"value":     res.Value,
		"solutions": len(res.Solutions),
	}).Debug("exhaustive search finished")
	return res, nil
}

// scan evaluates every mask in [lo, hi) and returns the best ones seen:
// the first minimum, or every assignment within Tolerance of the minimum
// when all is set.
func scan(ctx context.Context, terms []compiled, values [2]int, lo, hi uint64, all bool) ([]candidate, error) {
	var kept []candidate
	best := math.Inf(1)
	for mask := lo; mask < hi; mask++ {
		if (mask-lo)&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrIncomplete, err)
			}
		}
		v := energy(terms, values, mask)
		switch {
		case v < best-Tolerance:
			best = v
			kept = append(kept[:0], candidate{mask: mask, value: v})
		case all && v <= best+Tolerance:
			if v < best {
				best = v
			}
			kept = append(kept, candidate{mask: mask, value: v})
		}
	}
	if all {
		out := kept[:0]
		for _, c := range kept {
			if c.value <= best+Tolerance {
				out = append(out, c)
			}
		}
		kept = out
	}
	return kept, nil
}

func energy(terms []compiled, values [2]int, mask uint64) float64 {
	var e float64
	for _, t := range terms {
		prod := t.coef
		for _, b := range t.bits {
			prod *= float64(values[(mask>>uint(b))&1])
		}
		e += prod
	}
	return e
}
