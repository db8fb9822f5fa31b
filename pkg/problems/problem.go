package problems

import (
	"errors"
	"fmt"
	"maps"
	"reflect"

	"github.com/operator-framework/quboform/pkg/qubo"
)

var ErrNotImplemented = errors.New("problem implements neither a QUBO nor an Ising formulation")

// Args is the snapshot of the arguments a problem was constructed with.
// Two problems of the same type built from equal Args are equal.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// Problem values are combinatorial problems that can be written as a QUBO
// or an Ising model.
type Problem interface {
	// Name returns the constructor name used by String and Parse.
	Name() string
	Args() Args
	// NumBinaryVariables returns the number of variables of the QUBO
	// and Ising formulations.
	NumBinaryVariables() int
	ToQUBO(opts ...Option) (*qubo.QUBOMatrix, error)
	ToIsing(opts ...Option) (*qubo.IsingMatrix, error)
	Equal(other Problem) bool
	String() string
}

// QUBOFormulator is implemented by problems whose natural formulation is
// a QUBO. Base derives the Ising model from it.
type QUBOFormulator interface {
	FormulateQUBO(m Multipliers) (*qubo.QUBOMatrix, error)
}

// IsingFormulator is implemented by problems whose natural formulation
// is an Ising model. Base derives the QUBO from it.
type IsingFormulator interface {
	FormulateIsing(m Multipliers) (*qubo.IsingMatrix, error)
}

// Base implements the parts of Problem shared by every concrete problem.
// Embed it and initialise it with NewBase from the constructor.
type Base struct {
	impl any
	name string
	args Args
}

// NewBase captures the construction arguments of impl. impl is the
// concrete problem embedding the returned Base; it must implement
// QUBOFormulator or IsingFormulator. Positional and keyword arguments are
// copied, so later changes to the caller's slice or map do not leak in.
func NewBase(impl any, name string, positional []any, keyword map[string]any) Base {
	args := Args{
		Positional: append([]any{}, positional...),
		Keyword:    maps.Clone(keyword),
	}
	if args.Keyword == nil {
		args.Keyword = map[string]any{}
	}
	return Base{impl: impl, name: name, args: args}
}

func (b *Base) Name() string {
	return b.name
}

// Args returns a copy of the captured arguments.
func (b *Base) Args() Args {
	return Args{
		Positional: append([]any{}, b.args.Positional...),
		Keyword:    maps.Clone(b.args.Keyword),
	}
}

// ToQUBO returns the QUBO formulation. If the problem only implements
// IsingFormulator the Ising model is converted, offset included.
func (b *Base) ToQUBO(opts ...Option) (*qubo.QUBOMatrix, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	switch f := b.impl.(type) {
	case QUBOFormulator:
		return f.FormulateQUBO(cfg.Multipliers)
	case IsingFormulator:
		m, err := f.FormulateIsing(cfg.Multipliers)
		if err != nil {
			return nil, err
		}
		return qubo.IsingToQUBO(m), nil
	}
	return nil, fmt.Errorf("%s: %w", b.name, ErrNotImplemented)
}

// ToIsing returns the Ising formulation. If the problem only implements
// QUBOFormulator the QUBO is converted, offset included.
func (b *Base) ToIsing(opts ...Option) (*qubo.IsingMatrix, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	switch f := b.impl.(type) {
	case IsingFormulator:
		return f.FormulateIsing(cfg.Multipliers)
	case QUBOFormulator:
		q, err := f.FormulateQUBO(cfg.Multipliers)
		if err != nil {
			return nil, err
		}
		return qubo.QUBOToIsing(q), nil
	}
	return nil, fmt.Errorf("%s: %w", b.name, ErrNotImplemented)
}

// Equal reports whether other has the same concrete type and was built
// from equal arguments. Formulations are not compared.
func (b *Base) Equal(other Problem) bool {
	if other == nil || reflect.TypeOf(b.impl) != reflect.TypeOf(other) {
		return false
	}
	return reflect.DeepEqual(b.args, other.Args())
}

// String returns Name(arg1, arg2, key=value). Parsing it with a Registry
// that knows the problem yields an equal problem.
func (b *Base) String() string {
	return formatCall(b.name, b.args)
}
