package formulate

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/quboform/pkg/problems"
	"github.com/operator-framework/quboform/pkg/problems/covering"
	"github.com/operator-framework/quboform/pkg/qubo"
	"github.com/operator-framework/quboform/pkg/solver"
)

// NewRegistry returns a registry of every problem the command line knows.
func NewRegistry() (*problems.Registry, error) {
	r := problems.NewRegistry()
	if err := covering.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

func NewFormulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formulate <problem>",
		Short: "Prints the QUBO or Ising formulation of a problem",
		Long: `Prints the QUBO or Ising formulation of a problem written in its canonical
form. For instance:
quboform formulate 'VertexCover({("a", "b"), ("a", "c"), ("c", "d"), ("a", "d")})' --solve
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := options{}
			var err error
			if o.ising, err = cmd.Flags().GetBool("ising"); err != nil {
				return err
			}
			if o.solve, err = cmd.Flags().GetBool("solve"); err != nil {
				return err
			}
			if o.all, err = cmd.Flags().GetBool("all"); err != nil {
				return err
			}
			if o.maxVariables, err = cmd.Flags().GetInt("max-variables"); err != nil {
				return err
			}
			raw, err := cmd.Flags().GetStringToString("multiplier")
			if err != nil {
				return err
			}
			if o.multipliers, err = problems.ParseMultipliers(raw); err != nil {
				return err
			}
			return formulate(cmd.Context(), cmd.OutOrStdout(), args[0], o)
		},
	}
	cmd.Flags().Bool("ising", false, "print the Ising model instead of the QUBO")
	cmd.Flags().Bool("solve", false, "minimise the formulation exhaustively")
	cmd.Flags().Bool("all", false, "with --solve, print every optimal assignment")
	cmd.Flags().Int("max-variables", solver.MaxVariables, "with --solve, refuse larger models")
	cmd.Flags().StringToStringP("multiplier", "m", nil, "formulation multipliers, e.g. -m A=2,B=1")
	return cmd
}

type options struct {
	ising        bool
	solve        bool
	all          bool
	maxVariables int
	multipliers  problems.Multipliers
}

func formulate(ctx context.Context, out io.Writer, text string, o options) error {
	r, err := NewRegistry()
	if err != nil {
		return err
	}
	p, err := r.Parse(text)
	if err != nil {
		return err
	}

	logger := logrus.WithField("problem", p.Name())
	solverOpts := []solver.Option{solver.WithLogger(logger), solver.WithMaxVariables(o.maxVariables)}
	if o.all {
		solverOpts = append(solverOpts, solver.WithAllSolutions())
	}
	opt := problems.WithMultipliers(o.multipliers)

	fmt.Fprintln(out, p)
	fmt.Fprintf(out, "variables: %d\n", p.NumBinaryVariables())

	var res *solver.Result
	if o.ising {
		m, err := p.ToIsing(opt)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, m)
		if o.solve {
			res, err = solver.SolveIsing(ctx, m, solverOpts...)
		}
		if err != nil {
			return err
		}
	} else {
		q, err := p.ToQUBO(opt)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, q)
		if o.solve {
			res, err = solver.SolveQUBO(ctx, q, solverOpts...)
		}
		if err != nil {
			return err
		}
	}
	if res == nil {
		return nil
	}

	fmt.Fprintf(out, "value: %g\n", res.Value)
	for _, sol := range res.Solutions {
		fmt.Fprintf(out, "solution: %s\n", formatSolution(sol))
	}
	return nil
}

func formatSolution(sol qubo.Solution) string {
	idx := make([]int, 0, len(sol))
	for i := range sol {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	values := make([]int, len(idx))
	for i, j := range idx {
		values[i] = sol[j]
	}
	return fmt.Sprint(values)
}
