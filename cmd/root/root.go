package root

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/operator-framework/quboform/cmd/dimacs"
	"github.com/operator-framework/quboform/cmd/formulate"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quboform",
		Short: "Quboform writes combinatorial problems as QUBO and Ising models",
		Long: `Quboform builds QUBO, higher order and Ising formulations of combinatorial
problems, converts between them and checks small instances by exhaustive search.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// add sub-commands
	rootCmd.AddCommand(formulate.NewFormulateCommand())
	rootCmd.AddCommand(dimacs.NewVertexCoverCommand())
	rootCmd.AddCommand(dimacs.NewMaxSatCommand())

	// --max_variables and --max-variables name the same flag.
	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)

	return rootCmd
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
