package dimacs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/quboform/internal/sat"
	"github.com/operator-framework/quboform/pkg/problems"
	"github.com/operator-framework/quboform/pkg/problems/covering"
	"github.com/operator-framework/quboform/pkg/solver"
)

func fileExists(_ *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file (%s) not found", args[0])
	}
	return nil
}

func NewMaxSatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maxsat <path>",
		Short: "Finds an assignment satisfying the most clauses of a cnf problem given in dimacs format",
		Long: `Encodes every clause of a cnf problem as a penalty, reduces the resulting
higher order problem to a QUBO and minimises it exhaustively. The answer is
cross-checked with a SAT solver. For instance:
c
c this is a comment
c header: p cnf <number of variable> <number of clauses>
p cnf 2 2
c clauses end in zero, negative means 'not'
c 0 (zero) is not a valid literal
1 2 0
1 -2 0
c cnf: (1 or 2) and (1 or not 2)
`,
		Args:    cobra.ExactArgs(1),
		PreRunE: fileExists,
		RunE: func(cmd *cobra.Command, args []string) error {
			lam, err := cmd.Flags().GetFloat64("lam")
			if err != nil {
				return err
			}
			return maxSat(cmd.Context(), cmd.OutOrStdout(), args[0], lam)
		},
	}
	cmd.Flags().Float64("lam", 1, "penalty for each unsatisfied clause")
	return cmd
}

func NewVertexCoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vertexcover <path>",
		Short: "Finds a minimum vertex cover of a graph given in dimacs edge format",
		Long: `Finds a minimum vertex cover by minimising its QUBO formulation
exhaustively. For instance:
c header: p edge <number of vertices> <number of edges>
p edge 4 4
e 1 2
e 1 3
e 3 4
e 1 4
`,
		Args:    cobra.ExactArgs(1),
		PreRunE: fileExists,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}
			raw, err := cmd.Flags().GetStringToString("multiplier")
			if err != nil {
				return err
			}
			m, err := problems.ParseMultipliers(raw)
			if err != nil {
				return err
			}
			return vertexCover(cmd.Context(), cmd.OutOrStdout(), args[0], m, all)
		},
	}
	cmd.Flags().Bool("all", false, "print every minimum cover")
	cmd.Flags().StringToStringP("multiplier", "m", nil, "formulation multipliers, e.g. -m A=2,B=1")
	return cmd
}

func maxSat(ctx context.Context, out io.Writer, path string, lam float64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening dimacs file (%s): %w", path, err)
	}
	defer f.Close()

	d, err := NewCNF(f)
	if err != nil {
		return fmt.Errorf("error parsing dimacs file (%s): %w", path, err)
	}
	h, err := EncodeCNF(d, lam)
	if err != nil {
		return err
	}
	q, err := h.ToQUBO()
	if err != nil {
		return err
	}

	logger := logrus.WithField("file", path)
	logger.WithFields(logrus.Fields{
		"clauses":   len(d.clauses),
		"degree":    h.Degree(),
		"variables": q.NumBinaryVariables(),
	}).Debug("encoded cnf")

	res, err := solver.SolveQUBO(ctx, q, solver.WithLogger(logger))
	if err != nil {
		return err
	}
	values, err := h.ConvertSolution(res.Best())
	if err != nil {
		return err
	}
	for v := 1; v <= d.numVariables; v++ {
		if _, ok := values[v]; !ok {
			values[v] = 0
		}
	}
	_, violated, err := h.ConstraintsSatisfied(values)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "unsatisfied clauses: %d\n", len(violated))
	for v := 1; v <= d.numVariables; v++ {
		fmt.Fprintf(out, "%d = %t\n", v, values[v] == 1)
	}

	witness, err := h.Feasible()
	var ns sat.NotSatisfiable
	switch {
	case errors.As(err, &ns):
		if len(violated) == 0 {
			return fmt.Errorf("sat solver reports a conflict but every clause holds: %w", err)
		}
		fmt.Fprintf(out, "not satisfiable: %s\n", err)
	case err != nil:
		return err
	case len(violated) > 0:
		return fmt.Errorf("%d clauses left unsatisfied but the sat solver found a model", len(violated))
	default:
		logger.WithField("model", witness).Debug("sat solver agrees")
	}
	return nil
}

func vertexCover(ctx context.Context, out io.Writer, path string, m problems.Multipliers, all bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening dimacs file (%s): %w", path, err)
	}
	defer f.Close()

	g, err := NewGraph(f)
	if err != nil {
		return fmt.Errorf("error parsing dimacs file (%s): %w", path, err)
	}
	vc, err := covering.NewVertexCover(EdgeSet(g))
	if err != nil {
		return err
	}

	logger := logrus.WithField("file", path)
	opts := []problems.Option{
		problems.WithMultipliers(m),
		problems.WithSolverOptions(solver.WithLogger(logger)),
	}
	var covers []covering.VertexSet
	if all {
		covers, err = vc.SolveBruteforceAll(ctx, opts...)
	} else {
		var cover covering.VertexSet
		cover, err = vc.SolveBruteforce(ctx, opts...)
		covers = append(covers, cover)
	}
	if err != nil {
		return err
	}

	for _, cover := range covers {
		labels := make([]int, 0, len(cover))
		for v := range cover {
			labels = append(labels, v.(int))
		}
		sort.Ints(labels)
		fmt.Fprintf(out, "cover: %v valid: %t\n", labels, vc.IsSolutionValid(cover))
	}
	return nil
}
