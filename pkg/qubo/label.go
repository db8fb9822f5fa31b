package qubo

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Label identifies a binary variable. Any comparable value can be used;
// integers of every kind are normalised to int so that int64(3) and 3
// name the same variable.
type Label = any

// Term is a product of variables. The empty term is the constant offset.
type Term []Label

func (t Term) String() string {
	s := make([]string, len(t))
	for i, l := range t {
		s[i] = FormatLabel(l)
	}
	if len(t) == 1 {
		return "(" + s[0] + ",)"
	}
	return "(" + strings.Join(s, ", ") + ")"
}

// FormatLabel renders strings quoted and everything else with %v.
func FormatLabel(l Label) string {
	if s, ok := l.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", l)
}

// NormalizeLabel returns the canonical form of l, or an error if l cannot
// be used as a variable label.
func NormalizeLabel(l Label) (Label, error) {
	switch v := l.(type) {
	case nil:
		return nil, fmt.Errorf("nil label: %w", ErrInvalidKey)
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return nil, fmt.Errorf("label %d overflows int: %w", v, ErrInvalidKey)
		}
		return int(v), nil
	case uint:
		return uintLabel(uint64(v))
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return uintLabel(uint64(v))
	case uint64:
		return uintLabel(uint64(v))
	case string:
		return v, nil
	}
	if !reflect.TypeOf(l).Comparable() {
		return nil, fmt.Errorf("label of type %T is not comparable: %w", l, ErrInvalidKey)
	}
	return l, nil
}

func uintLabel(v uint64) (Label, error) {
	if v > math.MaxInt {
		return nil, fmt.Errorf("label %d overflows int: %w", v, ErrInvalidKey)
	}
	return int(v), nil
}

const (
	classInt = iota
	classString
	classOther
)

func labelClass(l Label) int {
	switch l.(type) {
	case int:
		return classInt
	case string:
		return classString
	}
	return classOther
}

// labelOrder is the total order used to canonicalise terms. Integers sort
// first by value, then strings by value, then any other label by its
// "%T:%v" text. Remaining ties are broken by the order in which the labels
// were first seen by the owning container.
type labelOrder struct {
	seen map[Label]int
}

func newLabelOrder() *labelOrder {
	return &labelOrder{seen: make(map[Label]int)}
}

func (o *labelOrder) intern(l Label) {
	if labelClass(l) != classOther {
		return
	}
	if _, ok := o.seen[l]; !ok {
		o.seen[l] = len(o.seen)
	}
}

func (o *labelOrder) known(l Label) bool {
	if labelClass(l) != classOther {
		return true
	}
	_, ok := o.seen[l]
	return ok
}

func (o *labelOrder) compare(a, b Label) int {
	ca, cb := labelClass(a), labelClass(b)
	if ca != cb {
		return ca - cb
	}
	switch ca {
	case classInt:
		return cmp.Compare(a.(int), b.(int))
	case classString:
		return strings.Compare(a.(string), b.(string))
	}
	if a == b {
		return 0
	}
	if c := strings.Compare(otherText(a), otherText(b)); c != 0 {
		return c
	}
	return cmp.Compare(o.seen[a], o.seen[b])
}

func (o *labelOrder) encode(l Label) string {
	switch v := l.(type) {
	case int:
		return "i" + strconv.Itoa(v)
	case string:
		return "s" + strconv.Quote(v)
	}
	return "o" + strconv.Itoa(o.seen[l])
}

func otherText(l Label) string {
	return fmt.Sprintf("%T:%v", l, l)
}

// SortLabels sorts normalised labels in place using the same order that
// containers use for their terms. Ties between distinct labels that render
// identically keep their relative input order.
func SortLabels(labels []Label) {
	o := newLabelOrder()
	for _, l := range labels {
		o.intern(l)
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return o.compare(labels[i], labels[j]) < 0
	})
}
