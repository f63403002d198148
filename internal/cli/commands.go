package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/petems/shortcut-tray/internal/logging"
	"github.com/petems/shortcut-tray/internal/manager"
	"github.com/spf13/cobra"
)

// openManager loads config and the shortcut cache for a one-shot command.
// Cache problems are logged; the command still runs on what could be loaded.
func (f *flags) openManager() (*manager.Manager, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.NewConsole(cfg.LogLevel)

	c, err := buildComponents(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := c.manager.Initialize(); err != nil {
		log.Warn().Err(err).Str("cache", c.cachePath).Msg("Shortcut cache loaded with errors")
	}
	return c.manager, nil
}

func newListCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every extension with its effective shortcuts as JSON",
		Long: `Print every registered extension merged with the shortcut cache.

Examples:
  shortcut-tray list
  shortcut-tray list | jq '.[] | select(.enabled) | .shortcuts'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := f.openManager()
			if err != nil {
				return err
			}
			out, err := mgr.SnapshotJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newEnableCmd(f *flags, enable bool) *cobra.Command {
	use, short := "enable", "Turn an extension's shortcuts on"
	if !enable {
		use, short = "disable", "Turn an extension's shortcuts off"
	}
	return &cobra.Command{
		Use:   use + " <extension>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := f.openManager()
			if err != nil {
				return err
			}
			if err := mgr.SetEnabled(args[0], enable); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", args[0], use)
			return err
		},
	}
}

func newBindCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <extension> <action> <combination>",
		Short: "Override the key combination of one action",
		Long: `Override the key combination of one action.

Combinations are written as modifiers and a key joined by "+". Modifiers are
super (cmd), alt (opt), control (ctrl) and shift; keys are codes such as KeyV,
Digit1 and F5 or single characters.

Examples:
  shortcut-tray bind Clipboard Paste super+shift+KeyV
  shortcut-tray bind Clipboard HistoryViewer ctrl+alt+h`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			combo, err := keys.Parse(args[2])
			if err != nil {
				return fmt.Errorf("invalid combination %q: %w", args[2], err)
			}
			mgr, err := f.openManager()
			if err != nil {
				return err
			}
			if err := mgr.SetShortcut(args[0], args[1], combo); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s/%s bound to %s\n", args[0], args[1], combo)
			return err
		},
	}
}

func newUnbindCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "unbind <extension> <action>",
		Short: "Drop an override so the default combination applies again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := f.openManager()
			if err != nil {
				return err
			}
			if err := mgr.ResetShortcut(args[0], args[1]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s/%s reset to default\n", args[0], args[1])
			return err
		},
	}
}

func newApplyCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file|->",
		Short: "Replace every extension record from a JSON file",
		Long: `Replace the whole shortcut cache with the records in a JSON file, or stdin
when the file is "-". The payload is the shape printed by "list" or stored in
the cache file; descriptions are ignored.

Examples:
  shortcut-tray list > shortcuts.json
  shortcut-tray apply shortcuts.json
  shortcut-tray list | jq '.[0].enabled = true' | shortcut-tray apply -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			mgr, err := f.openManager()
			if err != nil {
				return err
			}
			if err := mgr.ApplyJSON(string(payload)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d extension records\n", len(mgr.Records()))
			return err
		},
	}
}

func readPayload(stdin io.Reader, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func newConfigCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.loadConfig()
			if err != nil {
				return err
			}
			cachePath, err := cfg.CacheFile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:    %s\n", cfg.Path())
			fmt.Fprintf(out, "cache:     %s\n", cachePath)
			fmt.Fprintf(out, "log level: %s\n", cfg.LogLevel)
			_, err = fmt.Fprintf(out, "hotkeys:   %t\n", cfg.RegisterHotkeys)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.loadConfig()
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Path()); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", cfg.Path())
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.Path())
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}
