package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aristath/deadline/internal/console"
	"github.com/aristath/deadline/internal/scenario"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in three-task demonstration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sc := scenario.Demo()
			sc.Steps = []scenario.Step{{Op: scenario.OpReport}, {Op: scenario.OpRun}, {Op: scenario.OpReport}}

			fmt.Fprintln(out, "Demo tasks:")
			for _, t := range sc.Tasks {
				fmt.Fprintf(out, "  %s: duration=%d deadline=%d value=%d\n", t.ID, t.Duration, t.Deadline, t.Value)
			}

			s, err := a.newSession(ctx, sc.Name)
			if err != nil {
				return err
			}
			res, err := scenario.Apply(s.exec, sc)
			counts := s.close(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\nInitial report:")
			console.RenderReport(out, *res.Steps[0].Report)
			fmt.Fprintln(out, "\nFinal report:")
			console.RenderReport(out, *res.Steps[2].Report)

			if len(counts) > 0 {
				renderCounts(cmd, counts)
			}
			return nil
		},
	}
}

// renderCounts prints journal counts sorted by event type.
func renderCounts(cmd *cobra.Command, counts map[string]int) {
	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nJournal:")
	for _, typ := range types {
		fmt.Fprintf(out, "  %-16s %d\n", typ, counts[typ])
	}
}
