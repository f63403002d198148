// Package cli holds the shortcut-tray command tree. The tray itself and the
// OS hotkey backend are injected by main so the commands stay testable
// without a desktop session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/petems/shortcut-tray/internal/app"
	"github.com/petems/shortcut-tray/internal/cache"
	"github.com/petems/shortcut-tray/internal/config"
	"github.com/petems/shortcut-tray/internal/extension"
	"github.com/petems/shortcut-tray/internal/extensions/clipboard"
	"github.com/petems/shortcut-tray/internal/hotkey"
	"github.com/petems/shortcut-tray/internal/inject"
	"github.com/petems/shortcut-tray/internal/logging"
	"github.com/petems/shortcut-tray/internal/manager"
	"github.com/petems/shortcut-tray/internal/permissions"
	"github.com/petems/shortcut-tray/internal/store"
	"github.com/petems/shortcut-tray/internal/watcher"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Options supplies the platform pieces the root command needs.
type Options struct {
	Version string

	// NewRegistrar opens the OS hotkey backend. Nil disables global hotkeys.
	NewRegistrar func() (hotkey.Registrar, error)

	// RunUI blocks running the tray until ctx is done or the user quits.
	// Nil runs headless until interrupted.
	RunUI func(ctx context.Context, a *app.App, log zerolog.Logger) error
}

type flags struct {
	configPath string
	cachePath  string
	logLevel   string
}

// NewRootCmd builds the command tree. The root command runs the tray.
func NewRootCmd(opts Options) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "shortcut-tray",
		Short:         "Global keyboard shortcuts from the menu bar",
		Long:          `A menu bar utility that binds global keyboard shortcuts to built-in extensions such as clipboard history.`,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd.Context(), f, opts)
		},
	}

	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "",
		"config file (default: platform config dir/shortcut-tray/config.json)")
	root.PersistentFlags().StringVar(&f.cachePath, "cache", "",
		"shortcut cache file (default: ~/.shortcuts/config.json)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "",
		"log level: trace, debug, info, warn, error")

	root.AddCommand(
		newListCmd(f),
		newEnableCmd(f, true),
		newEnableCmd(f, false),
		newBindCmd(f),
		newUnbindCmd(f),
		newApplyCmd(f),
		newConfigCmd(f),
	)
	return root
}

// loadConfig reads the config file and applies command-line overrides.
func (f *flags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.cachePath != "" {
		cfg.CachePath = f.cachePath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, nil
}

// components is everything built from config before a registrar exists.
type components struct {
	cachePath string
	manager   *manager.Manager
}

func buildComponents(cfg *config.Config, log zerolog.Logger) (*components, error) {
	cachePath, err := cfg.CacheFile()
	if err != nil {
		return nil, err
	}

	keystrokes := inject.New()
	clip := clipboard.New(clipboard.Config{
		Copier:      keystrokes,
		Paster:      keystrokes,
		HistorySize: cfg.Clipboard.HistorySize,
		Logger:      log.With().Str("extension", clipboard.Name).Logger(),
	})

	mgr := manager.New(manager.Config{
		Registry: extension.NewRegistry(clip.Extension()),
		Cache:    cache.New(store.New(cachePath), log),
		Logger:   log,
	})

	return &components{cachePath: cachePath, manager: mgr}, nil
}

func runTray(ctx context.Context, f *flags, opts Options) error {
	cfg, err := f.loadConfig()
	if err != nil {
		fallback := logging.New()
		fallback.Error().Err(err).Msg("Failed to load config")
		return err
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	// macOS requires accessibility approval before hotkeys or synthetic paste work
	if err := permissions.EnsurePermissions(); err != nil {
		log.Warn().Err(err).Msg("Accessibility permission missing, shortcuts may not fire")
	}

	c, err := buildComponents(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up shortcuts: %w", err)
	}

	registrar := openRegistrar(cfg, opts, log)

	var w app.Watcher
	if cfg.WatchCache {
		fw, err := watcher.New(watcher.Config{
			Path:     c.cachePath,
			Debounce: cfg.WatchDebounce,
			Logger:   log,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Cache watching disabled")
		} else {
			w = fw
		}
	}

	application := app.New(app.Config{
		Manager: c.manager,
		Hotkeys: registrar,
		Watcher: w,
		Logger:  log,
	})

	log.Info().Str("cache", c.cachePath).Msg("ShortcutTray starting...")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.RunUI == nil {
		if err := application.Start(); err != nil {
			log.Warn().Err(err).Msg("Started with shortcut errors")
		}
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		return application.Shutdown(context.Background())
	}

	// Start tray UI - MUST run on main thread
	return opts.RunUI(ctx, application, log)
}

func openRegistrar(cfg *config.Config, opts Options, log zerolog.Logger) hotkey.Registrar {
	if !cfg.RegisterHotkeys || opts.NewRegistrar == nil {
		log.Info().Msg("Global hotkeys disabled")
		return hotkey.Nop()
	}
	r, err := opts.NewRegistrar()
	if err != nil {
		if errors.Is(err, hotkey.ErrUnsupported) {
			log.Warn().Msg("Global hotkeys are not supported on this platform")
		} else {
			log.Error().Err(err).Msg("Failed to initialize hotkeys")
		}
		return hotkey.Nop()
	}
	return r
}
