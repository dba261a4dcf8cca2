package cli

import (
	"github.com/spf13/cobra"

	"github.com/aristath/deadline/internal/scenario"
	"github.com/aristath/deadline/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "tui [scenario]",
		Short: "Interactive dashboard",
		Long:  "Start the dashboard, optionally preloaded with a scenario's tasks or the demo tasks.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var sc *scenario.Scenario
			switch {
			case len(args) == 1:
				loaded, err := scenario.Load(a.resolveScenarios(args)[0])
				if err != nil {
					return err
				}
				sc = loaded
			case demo:
				sc = scenario.Demo()
			}

			s, err := a.newSession(ctx, "tui")
			if err != nil {
				return err
			}
			defer s.close(ctx)

			if sc != nil {
				for _, t := range sc.Tasks {
					if err := s.exec.AddTask(t.ID, t.Duration, t.Deadline, t.Value); err != nil {
						return err
					}
				}
			}

			return tui.Run(ctx, s.exec, s.bus, a.cfg.Events.Buffer)
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "Preload the demo tasks")
	return cmd
}
