// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gi-cli/gi/internal/config"
)

// newConfigCommand creates the `gi config` command tree.
func newConfigCommand(app *App, g *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gi configuration",
		Long: `Manage gi configuration.

Configuration is stored in:
  - Linux: ~/.config/gi/config.cue
  - macOS: ~/Library/Application Support/gi/config.cue
  - Windows: %APPDATA%\gi\config.cue

Aliases can also be kept in aliases.jsonc next to config.cue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			if err := showConfig(cmd.Context(), app, g); err != nil {
				return fail(app.stderr, err, g.verbose, config.ColorSchemeAuto)
			}
			return nil
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			force, _ := cmd.Flags().GetBool("force")
			if err := initConfig(app, force); err != nil {
				return fail(app.stderr, err, g.verbose, config.ColorSchemeAuto)
			}
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration and cache paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			if err := showConfigPath(cmd.Context(), app, g); err != nil {
				return fail(app.stderr, err, g.verbose, config.ColorSchemeAuto)
			}
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, g *globalFlags) error {
	cfg, err := app.loadConfig(ctx, g)
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current configuration"))
	if cfg.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), cfg.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	token := SubtitleStyle.Render("(not set)")
	if cfg.Source.Token != "" {
		token = SuccessStyle.Render("(set)")
	}
	fmt.Fprintf(w, "%s: %s\n\n", CmdStyle.Render("GitHub token"), token)
	fmt.Fprint(w, config.GenerateCUE(cfg))
	return nil
}

func initConfig(app *App, force bool) error {
	path, created, err := config.CreateDefaultConfig(app.ConfigDir, force)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s %s already exists (use --force to overwrite)\n",
			WarningStyle.Render("!"), CmdStyle.Render(path))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", markOK, CmdStyle.Render(path))
	return nil
}

func showConfigPath(ctx context.Context, app *App, g *globalFlags) error {
	cfgDir, err := app.configDir()
	if err != nil {
		return err
	}
	cfgFile := g.configPath
	if cfgFile == "" {
		cfgFile = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", cfgFile)

	cfg, err := app.loadConfig(ctx, g)
	if err != nil {
		return err
	}
	if p, ok := cfg.AliasFilePath(cfgDir); ok {
		fmt.Fprintf(app.stdout, "Alias file: %s\n", p)
	} else {
		fmt.Fprintf(app.stdout, "Alias file: %s %s\n", filepath.Join(cfgDir, config.AliasFileName), SubtitleStyle.Render("(not present)"))
	}

	cacheDir := g.cacheDir
	if cacheDir == "" {
		if cacheDir, err = cfg.ResolvedCacheDir(); err != nil {
			return err
		}
	}
	fmt.Fprintf(app.stdout, "Cache directory: %s\n", cacheDir)
	return nil
}
