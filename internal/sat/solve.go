package sat

import (
	"fmt"
	"strings"

	"github.com/go-air/gini"

	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/constraint"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// NotSatisfiable is an error composed of a set of constraints that
// cannot hold together.
type NotSatisfiable []constraint.Constraint

func (e NotSatisfiable) Error() string {
	const msg = "constraints not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, c := range e {
		s[i] = c.String()
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(s, ", "))
}

// Solve looks for an assignment of every label mentioned by constraints
// under which all of them hold. If none exists the returned error is a
// NotSatisfiable listing constraints involved in the conflict.
func Solve(constraints []constraint.Constraint, opts ...Option) (map[qubo.Label]int, error) {
	s := settings{}
	for _, opt := range append(opts, defaults...) {
		opt(&s)
	}

	lm, err := newLitMapping(constraints)
	if err != nil {
		return nil, err
	}

	g := gini.New()
	lm.AddConstraints(g)
	switch g.Solve() {
	case satisfiable:
		assignment := lm.Assignment(g)
		s.tracer.Trace(position{labels: lm.inorder, assignment: assignment})
		return assignment, nil
	case unsatisfiable:
		conflicts := lm.Conflicts(g)
		s.tracer.Trace(position{labels: lm.inorder, conflicts: conflicts})
		return nil, NotSatisfiable(conflicts)
	}
	return nil, fmt.Errorf("solver returned an unknown result")
}

type settings struct {
	tracer Tracer
}

// Option configures Solve.
type Option func(s *settings)

// WithTracer reports the outcome of Solve to t.
func WithTracer(t Tracer) Option {
	return func(s *settings) {
		s.tracer = t
	}
}

var defaults = []Option{
	func(s *settings) {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
	},
}
