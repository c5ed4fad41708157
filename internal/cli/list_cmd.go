package cli

import (
	"fmt"

	"github.com/alexanderramin/objetivos/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every row of areas_objetivos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Areas.Load(cmd.Context())
			if err != nil {
				return err
			}
			if snap.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.EmptyTableMessage())
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSnapshot(snap))
			return nil
		},
	}
}
