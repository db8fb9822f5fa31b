package sat

import (
	"fmt"
	"io"

	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/qubo/constraint"
)

type SearchPosition interface {
	Labels() []qubo.Label
	Assignment() map[qubo.Label]int
	Conflicts() []constraint.Constraint
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nAssignment:\n")
	assignment := p.Assignment()
	for _, l := range p.Labels() {
		if v, ok := assignment[l]; ok {
			fmt.Fprintf(t.Writer, "- %s = %d\n", qubo.FormatLabel(l), v)
		}
	}
	fmt.Fprintf(t.Writer, "Conflicts:\n")
	for _, c := range p.Conflicts() {
		fmt.Fprintf(t.Writer, "- %s\n", c)
	}
}

type position struct {
	labels     []qubo.Label
	assignment map[qubo.Label]int
	conflicts  []constraint.Constraint
}

func (p position) Labels() []qubo.Label               { return p.labels }
func (p position) Assignment() map[qubo.Label]int     { return p.assignment }
func (p position) Conflicts() []constraint.Constraint { return p.conflicts }
