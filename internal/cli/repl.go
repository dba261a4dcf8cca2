package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/deadline/internal/console"
)

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive command console (ADD_TASK, TICK, RUN_ALL, REPORT, UNDO)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.newSession(ctx, "repl")
			if err != nil {
				return err
			}
			defer s.close(ctx)

			fmt.Fprintln(cmd.OutOrStdout(), "deadline console. Type HELP for commands.")
			return console.New(s.exec, cmd.OutOrStdout(), a.logger).Run(ctx, cmd.InOrStdin())
		},
	}
}
