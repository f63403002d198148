package main

import (
	"context"
	"fmt"
	"os"

	"github.com/petems/shortcut-tray/internal/app"
	"github.com/petems/shortcut-tray/internal/cli"
	"github.com/petems/shortcut-tray/internal/hotkey/system"
	"github.com/petems/shortcut-tray/internal/tray"
	"github.com/rs/zerolog"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	root := cli.NewRootCmd(cli.Options{
		Version:      fmt.Sprintf("%s (commit: %s)", Version, Commit),
		NewRegistrar: system.New,
		RunUI:        runTray,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runTray(ctx context.Context, application *app.App, log zerolog.Logger) error {
	trayUI := tray.New(application, log, Version, Commit)
	application.SetStatusUpdater(trayUI)
	return trayUI.Run(ctx)
}
