package qubo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Monomial is a term together with its coefficient.
type Monomial struct {
	Term Term
	Coef float64
}

type entry struct {
	term Term
	coef float64
}

// Poly is a polynomial over binary variables: a map from normalised terms
// to coefficients. Terms are canonicalised on every mutation, so the
// labels of a term are deduplicated (x*x == x for binary variables) and
// sorted by a fixed label order, making equivalent monomials share one
// entry. Which terms are accepted is decided by the container's KeyPolicy.
//
// Poly is not safe for concurrent mutation.
type Poly struct {
	policy KeyPolicy
	order  *labelOrder
	terms  map[string]*entry
	keys   []string
}

// NewPoly returns an empty polynomial governed by policy. A nil policy
// means HigherOrder.
func NewPoly(policy KeyPolicy) *Poly {
	p := &Poly{}
	p.init(policy)
	return p
}

func (p *Poly) init(policy KeyPolicy) {
	if policy == nil {
		policy = HigherOrder
	}
	p.policy = policy
	p.order = newLabelOrder()
	p.terms = make(map[string]*entry)
	p.keys = nil
}

// Policy returns the KeyPolicy the polynomial validates terms with.
func (p *Poly) Policy() KeyPolicy {
	return p.policy
}

// Add adds coef to the coefficient of the term formed by labels. Adding
// to an existing term accumulates; a resulting zero stays stored until
// Clean or Refresh.
func (p *Poly) Add(coef float64, labels ...Label) error {
	t, key, err := p.canonical(labels)
	if err != nil {
		return err
	}
	p.add(key, t, coef)
	return nil
}

// AddTerm is Add with the term given as a slice.
func (p *Poly) AddTerm(t Term, coef float64) error {
	return p.Add(coef, t...)
}

// Set overwrites the coefficient of the term formed by labels.
func (p *Poly) Set(coef float64, labels ...Label) error {
	t, key, err := p.canonical(labels)
	if err != nil {
		return err
	}
	if e, ok := p.terms[key]; ok {
		e.coef = coef
		return nil
	}
	p.add(key, t, coef)
	return nil
}

// Get returns the coefficient of the term formed by labels, or 0 if the
// term is absent.
func (p *Poly) Get(labels ...Label) float64 {
	key, ok := p.lookupKey(labels)
	if !ok {
		return 0
	}
	if e, ok := p.terms[key]; ok {
		return e.coef
	}
	return 0
}

// Has reports whether the term is stored, even with a zero coefficient.
func (p *Poly) Has(labels ...Label) bool {
	key, ok := p.lookupKey(labels)
	if !ok {
		return false
	}
	_, ok = p.terms[key]
	return ok
}

// Delete removes the term formed by labels. Deleting an absent term is a
// no-op.
func (p *Poly) Delete(labels ...Label) error {
	if err := p.check(labels); err != nil {
		return err
	}
	key, ok := p.lookupKey(labels)
	if !ok {
		return nil
	}
	if _, ok := p.terms[key]; !ok {
		return nil
	}
	delete(p.terms, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Clean removes every term whose coefficient is exactly zero.
func (p *Poly) Clean() {
	keys := p.keys[:0]
	for _, k := range p.keys {
		if p.terms[k].coef == 0 {
			delete(p.terms, k)
			continue
		}
		keys = append(keys, k)
	}
	p.keys = keys
}

// Refresh rebuilds the polynomial from its nonzero terms, in the order
// they were first inserted. Labels that no longer occur in any live term
// are forgotten.
func (p *Poly) Refresh() {
	live := p.Terms()
	p.init(p.policy)
	for _, m := range live {
		if m.Coef == 0 {
			continue
		}
		t, key, err := p.canonical(m.Term)
		if err != nil {
			panic("qubo: stored term no longer valid: " + err.Error())
		}
		p.add(key, t, m.Coef)
	}
}

// Len returns the number of stored terms, including explicit zeros.
func (p *Poly) Len() int {
	return len(p.keys)
}

// Terms returns a copy of the stored terms in insertion order.
func (p *Poly) Terms() []Monomial {
	out := make([]Monomial, 0, len(p.keys))
	for _, k := range p.keys {
		e := p.terms[k]
		out = append(out, Monomial{Term: append(Term{}, e.term...), Coef: e.coef})
	}
	return out
}

// Offset returns the coefficient of the empty term.
func (p *Poly) Offset() float64 {
	return p.Get()
}

// Degree returns the arity of the largest term with a nonzero coefficient.
func (p *Poly) Degree() int {
	d := 0
	for _, k := range p.keys {
		if e := p.terms[k]; e.coef != 0 && len(e.term) > d {
			d = len(e.term)
		}
	}
	return d
}

// Variables returns the labels occurring in terms with a nonzero
// coefficient, sorted by the container's label order.
func (p *Poly) Variables() []Label {
	seen := make(map[Label]struct{})
	var out []Label
	for _, k := range p.keys {
		e := p.terms[k]
		if e.coef == 0 {
			continue
		}
		for _, l := range e.term {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				out = append(out, l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return p.order.compare(out[i], out[j]) < 0
	})
	return out
}

// Copy returns a deep copy sharing no state with p.
func (p *Poly) Copy() *Poly {
	c := &Poly{
		policy: p.policy,
		order:  newLabelOrder(),
		terms:  make(map[string]*entry, len(p.terms)),
		keys:   append([]string(nil), p.keys...),
	}
	for l, i := range p.order.seen {
		c.order.seen[l] = i
	}
	for k, e := range p.terms {
		c.terms[k] = &entry{term: append(Term{}, e.term...), coef: e.coef}
	}
	return c
}

// AddConstant adds c to the offset.
func (p *Poly) AddConstant(c float64) {
	p.add("", Term{}, c)
}

// AddPoly adds every term of o to p. If any term of o violates p's policy
// nothing is added.
func (p *Poly) AddPoly(o *Poly) error {
	return p.merge(o, 1)
}

// SubPoly subtracts every term of o from p, with the same all-or-nothing
// behaviour as AddPoly.
func (p *Poly) SubPoly(o *Poly) error {
	return p.merge(o, -1)
}

func (p *Poly) merge(o *Poly, factor float64) error {
	terms := o.Terms()
	for _, m := range terms {
		if err := p.check(m.Term); err != nil {
			return err
		}
	}
	for _, m := range terms {
		t, key, err := p.canonical(m.Term)
		if err != nil {
			return err
		}
		p.add(key, t, factor*m.Coef)
	}
	return nil
}

// Scale multiplies every coefficient by f.
func (p *Poly) Scale(f float64) {
	for _, e := range p.terms {
		e.coef *= f
	}
}

// Mul returns the product p*o under p's policy. Each resulting term is the
// union of one term from each factor.
func (p *Poly) Mul(o *Poly) (*Poly, error) {
	res := NewPoly(p.policy)
	right := o.Terms()
	for _, a := range p.Terms() {
		if a.Coef == 0 {
			continue
		}
		for _, b := range right {
			if b.Coef == 0 {
				continue
			}
			labels := make(Term, 0, len(a.Term)+len(b.Term))
			labels = append(append(labels, a.Term...), b.Term...)
			if err := res.Add(a.Coef*b.Coef, labels...); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// Equal reports whether p and o have the same nonzero terms and
// coefficients.
func (p *Poly) Equal(o *Poly) bool {
	return p.EqualApprox(o, 0)
}

// EqualApprox is Equal with coefficients compared within tol.
func (p *Poly) EqualApprox(o *Poly, tol float64) bool {
	return p.within(o, tol) && o.within(p, tol)
}

func (p *Poly) within(o *Poly, tol float64) bool {
	for _, k := range p.keys {
		e := p.terms[k]
		if e.coef == 0 {
			continue
		}
		if math.Abs(o.Get(e.term...)-e.coef) > tol {
			return false
		}
	}
	return true
}

// Value evaluates the polynomial: each term contributes its coefficient
// times the product of the values of its labels. values must be keyed by
// normalised labels.
func (p *Poly) Value(values map[Label]int) (float64, error) {
	return p.evaluate(func(l Label) (int, error) {
		v, ok := values[l]
		if !ok {
			return 0, fmt.Errorf("no value for %s: %w", FormatLabel(l), ErrMissingVariable)
		}
		return v, nil
	})
}

func (p *Poly) evaluate(lookup func(Label) (int, error)) (float64, error) {
	var total float64
	for _, k := range p.keys {
		e := p.terms[k]
		if e.coef == 0 {
			continue
		}
		prod := e.coef
		for _, l := range e.term {
			v, err := lookup(l)
			if err != nil {
				return 0, err
			}
			prod *= float64(v)
		}
		total += prod
	}
	return total, nil
}

func (p *Poly) String() string {
	parts := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		e := p.terms[k]
		parts = append(parts, e.term.String()+": "+strconv.FormatFloat(e.coef, 'g', -1, 64))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p *Poly) add(key string, t Term, coef float64) {
	if e, ok := p.terms[key]; ok {
		e.coef += coef
		return
	}
	p.terms[key] = &entry{term: t, coef: coef}
	p.keys = append(p.keys, key)
}

// distinct normalises labels and drops repeats, keeping first occurrences.
func distinct(labels []Label) (Term, error) {
	out := make(Term, 0, len(labels))
	seen := make(map[Label]struct{}, len(labels))
	for _, l := range labels {
		n, err := NormalizeLabel(l)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func (p *Poly) check(labels []Label) error {
	t, err := distinct(labels)
	if err != nil {
		return err
	}
	return p.policy.Validate(t)
}

func (p *Poly) canonical(labels []Label) (Term, string, error) {
	t, err := distinct(labels)
	if err != nil {
		return nil, "", err
	}
	if err := p.policy.Validate(t); err != nil {
		return nil, "", err
	}
	for _, l := range t {
		p.order.intern(l)
	}
	p.sortTerm(t)
	return t, p.encode(t), nil
}

// lookupKey computes the key of labels without interning anything; a
// label the container has never seen cannot be part of a stored term.
func (p *Poly) lookupKey(labels []Label) (string, bool) {
	t, err := distinct(labels)
	if err != nil || p.policy.Validate(t) != nil {
		return "", false
	}
	for _, l := range t {
		if !p.order.known(l) {
			return "", false
		}
	}
	p.sortTerm(t)
	return p.encode(t), true
}

func (p *Poly) sortTerm(t Term) {
	sort.Slice(t, func(i, j int) bool {
		return p.order.compare(t[i], t[j]) < 0
	})
}

func (p *Poly) encode(t Term) string {
	parts := make([]string, len(t))
	for i, l := range t {
		parts[i] = p.order.encode(l)
	}
	return strings.Join(parts, ",")
}
