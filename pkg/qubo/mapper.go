package qubo

import (
	"fmt"
	"maps"
)

// LabelMapper translates between arbitrary labels and the dense
// non-negative integers used by QUBOMatrix and IsingMatrix.
//
// Indices are handed out lazily, the first time a label is seen. The
// mapper never forgets a label on its own: when every term containing a
// label cancels to zero the label keeps its index until the owner
// rebuilds the mapper, which keeps incremental construction cheap.
type LabelMapper struct {
	mapping map[Label]int
	reverse map[int]Label
	next    int
}

// NewLabelMapper returns an empty mapper.
func NewLabelMapper() *LabelMapper {
	return &LabelMapper{
		mapping: make(map[Label]int),
		reverse: make(map[int]Label),
	}
}

// Index returns the index of l, assigning the next free one if l has not
// been seen before. l must already be normalised.
func (m *LabelMapper) Index(l Label) int {
	if i, ok := m.mapping[l]; ok {
		return i
	}
	i := m.next
	m.mapping[l] = i
	m.reverse[i] = l
	m.next++
	return i
}

// Lookup returns the index of l without assigning one.
func (m *LabelMapper) Lookup(l Label) (int, bool) {
	i, ok := m.mapping[l]
	return i, ok
}

// LabelOf returns the label assigned to index i.
func (m *LabelMapper) LabelOf(i int) (Label, bool) {
	l, ok := m.reverse[i]
	return l, ok
}

// Len returns the number of mapped labels.
func (m *LabelMapper) Len() int {
	return len(m.mapping)
}

// Next returns the index the next unseen label would receive.
func (m *LabelMapper) Next() int {
	return m.next
}

// Mapping returns a copy of the label to index map.
func (m *LabelMapper) Mapping() map[Label]int {
	return maps.Clone(m.mapping)
}

// ReverseMapping returns a copy of the index to label map.
func (m *LabelMapper) ReverseMapping() map[int]Label {
	return maps.Clone(m.reverse)
}

// Set replaces the mapping with explicit. Indices must be non-negative and
// unique. Labels seen afterwards are numbered from one past the largest
// explicit index.
func (m *LabelMapper) Set(explicit map[Label]int) error {
	mapping := make(map[Label]int, len(explicit))
	reverse := make(map[int]Label, len(explicit))
	next := 0
	for l, i := range explicit {
		n, err := NormalizeLabel(l)
		if err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("label %s mapped to negative index %d", FormatLabel(n), i)
		}
		if other, ok := reverse[i]; ok {
			return fmt.Errorf("labels %s and %s both mapped to index %d", FormatLabel(other), FormatLabel(n), i)
		}
		if _, ok := mapping[n]; ok {
			return fmt.Errorf("label %s mapped more than once", FormatLabel(n))
		}
		mapping[n] = i
		reverse[i] = n
		if i >= next {
			next = i + 1
		}
	}
	m.mapping, m.reverse, m.next = mapping, reverse, next
	return nil
}

// Reset forgets every label.
func (m *LabelMapper) Reset() {
	m.mapping = make(map[Label]int)
	m.reverse = make(map[int]Label)
	m.next = 0
}
