package cmd

import (
	"github.com/chrisdamba/expcheck/internal/runner"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the structural checks only",
	Long: `validate loads the dataset and runs the structural checks without the
analyses. Exports, events and run records are produced as for a full run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, (*runner.Runner).Validate)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
