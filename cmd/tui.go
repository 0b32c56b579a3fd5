package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive portal.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering. The transport and store share this logger.
	f, err := shared.OpenLogFile(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	r.SetLogOutput(f)

	return ui.Run(ctx, ui.Deps{
		Store:    r.store,
		API:      r.api,
		Loader:   r.loader,
		Logger:   shared.WithLogger(r.logger, "component", "tui"),
		Open:     r.open,
		PageSize: r.config.UI.PageSize,
	})
}
