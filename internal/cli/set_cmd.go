package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/objetivos/internal/cli/formatter"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/spf13/cobra"
)

func newSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field> [value]",
		Short: "Change one field of one row",
		Long: `Change one editable field of one row. Fields: responsavel, objetivo,
periodo_inicio, periodo_fim. Dates use YYYY-MM-DD. Omitting the value
clears the field.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			f, err := domain.ParseField(args[1])
			if err != nil {
				return err
			}
			raw := ""
			if len(args) == 3 {
				raw = args[2]
			}
			value, err := domain.ParseInput(f, raw)
			if err != nil {
				return err
			}

			res, err := app.Areas.SetField(cmd.Context(), id, f, value)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(res))
			if len(res.Failed) > 0 {
				return res.Failed[0]
			}
			return nil
		},
	}
}
