package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"inkbook/internal/qualitygates"

	"github.com/spf13/cobra"
)

func newListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured gates by phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			gates, err := loadGates(*configPath)
			if err != nil {
				return err
			}
			runner := qualitygates.NewRunner(gates, nil)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PHASE\tGATE\tREQUIRED\tCOMMAND")
			for _, phase := range qualitygates.Phases {
				for _, g := range runner.Gates(phase) {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", phase, g.Name, g.Required, strings.Join(g.Command, " "))
				}
			}
			return tw.Flush()
		},
	}
}
