package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDumpCommand creates the dump command, a load-and-print round trip
// used to check graph fixtures without partitioning them.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dump <graph.yaml>",
		Short:         "Load a graph fixture and print its IR",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(rootOpts)
			g, err := LoadGraph(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading graph", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), g.String())
			return nil
		},
	}
	return cmd
}
