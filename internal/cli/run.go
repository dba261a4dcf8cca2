package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/deadline/internal/batch"
	"github.com/aristath/deadline/internal/console"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		concurrency int
		showReports bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenario files concurrently",
		Long: "Run plays each scenario on its own executor. Arguments are file paths\n" +
			"(.yaml, .yml, .json) or names from the config's scenarios map.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if concurrency <= 0 {
				concurrency = a.cfg.Batch.Concurrency
			}

			j, err := a.openJournal(ctx)
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
			}

			runner := batch.NewRunner(batch.Config{
				Concurrency: concurrency,
				EventBuffer: a.cfg.Events.Buffer,
				Journal:     j,
				Logger:      a.logger,
			})

			results, err := runner.RunFiles(ctx, a.resolveScenarios(args))
			if err != nil {
				return err
			}

			var failed []string
			for _, res := range results {
				if res.Err != nil {
					failed = append(failed, res.Name)
					fmt.Fprintf(out, "%-20s FAILED: %v\n", res.Name, res.Err)
					continue
				}
				final := res.Result.Final
				fmt.Fprintf(out, "%-20s time=%d value=%d completed=%s expired=%s\n",
					res.Name, final.Now, final.TotalValue,
					strings.Join(final.CompletedIDs(), ","), strings.Join(final.ExpiredIDs(), ","))
				if showReports {
					console.RenderReport(out, final)
				}
			}

			if len(failed) > 0 {
				return fmt.Errorf("%d scenario(s) failed: %s", len(failed), strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Max scenarios run at once (default from config)")
	cmd.Flags().BoolVar(&showReports, "report", false, "Print the full report for each scenario")
	return cmd
}

// resolveScenarios maps configured scenario names to their paths; other arguments pass through.
func (a *app) resolveScenarios(args []string) []string {
	paths := make([]string, len(args))
	for i, arg := range args {
		if p, ok := a.cfg.Scenarios[arg]; ok {
			paths[i] = p
			continue
		}
		paths[i] = arg
	}
	return paths
}
