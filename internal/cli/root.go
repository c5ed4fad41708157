package cli

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/objetivos/internal/service"
	"github.com/spf13/cobra"
)

// App holds the collaborators CLI commands run against.
type App struct {
	Areas service.AreaService

	// Web is the browser editor served by "serve"; Addr is its default
	// listen address.
	Web  http.Handler
	Addr string

	Logger *slog.Logger
	// LogLevel backs Logger's handler; --log-level adjusts it.
	LogLevel *slog.LevelVar

	// IsInteractive reports whether stdin is a terminal. Nil means yes.
	IsInteractive func() bool
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// NewRootCmd creates the top-level "objetivos" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "objetivos",
		Short:         "Editor for the areas_objetivos table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if app.LogLevel == nil {
		app.LogLevel = new(slog.LevelVar)
	}
	addLogLevelFlag(root.PersistentFlags(), app.LogLevel)

	root.AddCommand(
		newServeCmd(app),
		newTUICmd(app),
		newListCmd(app),
		newSetCmd(app),
	)

	return root
}
