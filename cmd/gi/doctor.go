// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gi-cli/gi/internal/cache"
	"github.com/gi-cli/gi/internal/catalog"
)

// doctorStore is the part of the cache the doctor inspects.
type doctorStore interface {
	Dir() string
	GetCatalog() (cache.CatalogRecord, bool)
	Entries() ([]cache.EntryInfo, error)
	IsStale(fetchedAt time.Time, ttl time.Duration) bool
}

type doctorParams struct {
	stdout     io.Writer
	configPath string
	source     string
	store      doctorStore
	catalogTTL time.Duration
	// probe downloads the catalog once to test connectivity; nil skips the test.
	probe   func(ctx context.Context) (*catalog.Catalog, error)
	verbose bool
}

func newDoctorCommand(app *App, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show diagnostic information about the cache, configuration and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			return app.withSession(cmd.Context(), g, func(s *session) error {
				p := doctorParams{
					stdout:     app.stdout,
					configPath: s.cfg.Path,
					source:     s.client.Source(),
					store:      s.store,
					catalogTTL: s.cfg.CatalogTTL,
					verbose:    s.verbose,
				}
				if !g.offline {
					p.probe = s.client.FetchCatalog
				}
				return runDoctor(cmd.Context(), p)
			})
		},
	}
}

// runDoctor prints the configuration, cache and network state. Problems are
// reported, not returned; only a canceled context is an error.
func runDoctor(ctx context.Context, p doctorParams) error {
	w := p.stdout
	row := func(key, value string) {
		fmt.Fprintf(w, "%-18s %s\n", key+":", value)
	}
	yesNo := func(ok bool) string {
		if ok {
			return SuccessStyle.Render("yes")
		}
		return ErrorStyle.Render("no")
	}

	fmt.Fprintln(w, TitleStyle.Render("gi diagnostic information"))
	fmt.Fprintln(w)
	row("Version", getVersionString())
	if p.configPath != "" {
		row("Config file", CmdStyle.Render(p.configPath))
	} else {
		row("Config file", SubtitleStyle.Render("(using defaults)"))
	}
	row("Source", CmdStyle.Render(p.source))

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Cache"))
	_, statErr := os.Stat(p.store.Dir())
	row("Directory", CmdStyle.Render(p.store.Dir()))
	row("Exists", yesNo(statErr == nil))

	rec, ok := p.store.GetCatalog()
	row("Template list", yesNo(ok))
	if ok {
		row("Last fetched", rec.FetchedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
		row("Fetched from", rec.Source)
		row("Templates", fmt.Sprint(rec.Catalog.Len()))
		if p.store.IsStale(rec.FetchedAt, p.catalogTTL) {
			row("Status", WarningStyle.Render(fmt.Sprintf("stale (older than %s)", p.catalogTTL)))
		} else {
			row("Status", SuccessStyle.Render("fresh"))
		}
	}

	entries, err := p.store.Entries()
	if err != nil {
		row("Cached templates", ErrorStyle.Render(err.Error()))
	} else {
		row("Cached templates", fmt.Sprint(len(entries)))
		if p.verbose {
			for _, e := range entries {
				fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render(e.Name),
					VerboseStyle.Render(fmt.Sprintf("(%d bytes, %s)", e.Size, e.FetchedAt.UTC().Format("2006-01-02 15:04:05"))))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Network"))
	if p.probe == nil {
		row("GitHub", SubtitleStyle.Render("skipped (offline)"))
		return nil
	}
	start := time.Now()
	cat, err := p.probe(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		row("GitHub", ErrorStyle.Render("failed"))
		row("Error", err.Error())
		return nil
	}
	row("GitHub", SuccessStyle.Render("ok"))
	row("Listing", fmt.Sprintf("%d templates in %s", cat.Len(), time.Since(start).Round(time.Millisecond)))
	return nil
}
