// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/config"
	"github.com/gi-cli/gi/internal/fetch"
	"github.com/gi-cli/gi/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the gi command tree. The root command itself
// generates a .gitignore from the given template names.
func NewRootCommand(app *App) *cobra.Command {
	g := &globalFlags{}

	rootCmd := newGenerateCommand(app, g)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/gi/config.cue)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&g.offline, "offline", false, "never touch the network; serve cached templates of any age")
	pf.BoolVar(&g.noCache, "no-cache", false, "download templates even when the cached copy is fresh")
	pf.BoolVar(&g.updateIndex, "update-index", false, "refresh the list of available templates")
	pf.StringVar(&g.from, "from", "", "template repository as owner/repo[@ref] or a github.com URL")
	pf.StringVar(&g.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	pf.StringVar(&g.cacheDir, "cache-dir", "", "cache directory (default is the platform cache directory)")

	rootCmd.AddCommand(
		newListCommand(app, g),
		newSearchCommand(app, g),
		newShowCommand(app, g),
		newDoctorCommand(app, g),
		newCacheCommand(app, g),
		newConfigCommand(app, g),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(ExitFailure)
	}

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitUsage)
	}
}

// handleError prints errors fang sees. Commands report their own failures
// before returning an ExitError, so those are not printed twice.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// reportError prints err and, when it links a guide, the rendered guide.
func reportError(w io.Writer, err error, verbose bool, scheme config.ColorScheme) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if iss, ok := issue.IssueOf(err); ok {
		if rendered, rerr := iss.Render(glamourStyle(scheme)); rerr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}

// exitCodeFor classifies err: network trouble and unexpected failures are
// ExitFailure, everything the user can correct is ExitUsage.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, fetch.ErrCatalogUnavailable),
		errors.Is(err, catalog.ErrNetwork),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitFailure
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ExitUsage
	}
	return ExitFailure
}

// fail reports err on stderr and converts it into an ExitError.
func fail(stderr io.Writer, err error, verbose bool, scheme config.ColorScheme) error {
	reportError(stderr, err, verbose, scheme)
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// withSession builds a session, runs fn and reports any failure.
func (a *App) withSession(ctx context.Context, g *globalFlags, fn func(*session) error) error {
	s, err := a.newSession(ctx, g)
	if err != nil {
		return fail(a.stderr, err, g.verbose, config.ColorSchemeAuto)
	}
	defer s.close()

	if err := fn(s); err != nil {
		return fail(a.stderr, err, s.verbose, s.cfg.UI.ColorScheme)
	}
	return nil
}

// silence stops cobra from printing errors and usage for cmd; failures are
// reported by the command itself.
func silence(cmd *cobra.Command) {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
}
