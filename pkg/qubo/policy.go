package qubo

// KeyPolicy validates the distinct, normalised labels of a term before it
// is stored. Every mutating operation of a Poly consults its policy, so a
// rejected term never reaches the container.
type KeyPolicy interface {
	Name() string
	Validate(distinct Term) error
}

var (
	// HigherOrder accepts terms of any arity.
	HigherOrder KeyPolicy = higherOrder{}
	// Quadratic accepts terms with at most two distinct labels.
	Quadratic KeyPolicy = quadratic{}
	// IntQuadratic accepts terms with at most two distinct non-negative
	// integer labels. It backs QUBOMatrix and IsingMatrix.
	IntQuadratic KeyPolicy = intQuadratic{}
)

type higherOrder struct{}

func (higherOrder) Name() string { return "higher-order" }

func (higherOrder) Validate(Term) error { return nil }

type quadratic struct{}

func (quadratic) Name() string { return "quadratic" }

func (quadratic) Validate(t Term) error {
	if len(t) > 2 {
		return &KeyError{Term: t, Reason: "must be a tuple of <= 2 unique elements"}
	}
	return nil
}

type intQuadratic struct{}

func (intQuadratic) Name() string { return "integer quadratic" }

func (intQuadratic) Validate(t Term) error {
	if err := Quadratic.Validate(t); err != nil {
		return err
	}
	for _, l := range t {
		if i, ok := l.(int); !ok || i < 0 {
			return &KeyError{Term: t, Reason: "labels must be nonnegative integers"}
		}
	}
	return nil
}
