package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"inkbook/internal/qualitygates"

	"github.com/spf13/cobra"
)

func newRunCmd(configPath *string) *cobra.Command {
	var (
		phases     []string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the quality gates",
		Long: `Run every phase, or only the phases named with --phase.

Examples:
  qualitygates run
  qualitygates run --phase analysis --phase security
  qualitygates run --config gates.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gates, err := loadGates(*configPath)
			if err != nil {
				return err
			}
			only := make([]qualitygates.Phase, 0, len(phases))
			for _, name := range phases {
				p, ok := qualitygates.ParsePhase(name)
				if !ok {
					return fmt.Errorf("unknown phase %q", name)
				}
				only = append(only, p)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report := qualitygates.NewRunner(gates, newExecutor()).Run(ctx, only...)
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(out, report)
			}
			if !report.Passed {
				return errGatesFailed
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&phases, "phase", "p", nil, "Phase to run (repeatable): analysis, security, tests, build")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

var outcomeMarks = map[qualitygates.Outcome]string{
	qualitygates.OutcomePassed:  "PASS",
	qualitygates.OutcomeFailed:  "FAIL",
	qualitygates.OutcomeError:   "ERR ",
	qualitygates.OutcomeSkipped: "SKIP",
}

func printReport(w io.Writer, report *qualitygates.Report) {
	for _, phase := range report.Phases {
		fmt.Fprintf(w, "== %s\n", phase.Phase)
		for _, res := range phase.Results {
			required := ""
			if res.Required {
				required = " (required)"
			}
			fmt.Fprintf(w, "  %s %s%s %s\n", outcomeMarks[res.Outcome], res.Gate, required, res.Duration.Round(time.Millisecond))
			if res.Outcome == qualitygates.OutcomeFailed || res.Outcome == qualitygates.OutcomeError {
				if res.Error != "" {
					fmt.Fprintf(w, "    error: %s\n", res.Error)
				}
				if res.Output != "" {
					fmt.Fprintf(w, "    %s\n", indent(res.Output))
				}
			}
		}
	}

	counts := report.Counts()
	status := "PASSED"
	if !report.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(w, "\n%s: %d passed, %d failed, %d errors, %d skipped in %s\n",
		status,
		counts[qualitygates.OutcomePassed],
		counts[qualitygates.OutcomeFailed],
		counts[qualitygates.OutcomeError],
		counts[qualitygates.OutcomeSkipped],
		report.Duration.Round(time.Millisecond))
}

func indent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\n' && i < len(s)-1 {
			out = append(out, "    "...)
		}
	}
	return string(out)
}
