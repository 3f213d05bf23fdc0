// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/config"
	"github.com/gi-cli/gi/internal/fetch"
	"github.com/gi-cli/gi/internal/issue"
)

// catalogLoader returns the template catalog, from cache or network.
type catalogLoader interface {
	Catalog(ctx context.Context) (fetch.CatalogInfo, error)
}

type listParams struct {
	stdout  io.Writer
	catalog catalogLoader
	query   string // empty lists everything
}

func newListCommand(app *App, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			return app.withSession(cmd.Context(), g, func(s *session) error {
				return runList(cmd.Context(), listParams{stdout: app.stdout, catalog: s.engine})
			})
		},
	}
}

func newSearchCommand(app *App, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search templates by name (case-insensitive)",
		Example: `  gi search python
  gi search global/jet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			query := strings.TrimSpace(args[0])
			if query == "" {
				err := issue.NewErrorContext().
					WithOperation("search templates").
					WithSuggestion("Pass part of a template name, e.g. 'gi search python'").
					Wrap(errors.New("search query cannot be empty")).
					BuildError()
				return fail(app.stderr, err, g.verbose, config.ColorSchemeAuto)
			}
			return app.withSession(cmd.Context(), g, func(s *session) error {
				return runList(cmd.Context(), listParams{stdout: app.stdout, catalog: s.engine, query: query})
			})
		},
	}
}

// runList prints the catalog, or the entries matching p.query, grouped by
// category.
func runList(ctx context.Context, p listParams) error {
	info, err := p.catalog.Catalog(ctx)
	if err != nil {
		return batchError(err)
	}
	if info.Stale {
		fmt.Fprintln(p.stdout, WarningStyle.Render("Showing a cached template list; it could not be refreshed."))
	}

	entries := info.Catalog.Entries()
	title := "Available .gitignore templates"
	if p.query != "" {
		entries = info.Catalog.Search(p.query)
		title = fmt.Sprintf("Templates matching '%s'", p.query)
	}
	if len(entries) == 0 {
		if p.query != "" {
			fmt.Fprintln(p.stdout, WarningStyle.Render(fmt.Sprintf("No templates found matching '%s'", p.query)))
			return nil
		}
		fmt.Fprintln(p.stdout, WarningStyle.Render("No templates found."))
		fmt.Fprintf(p.stdout, "Try running with %s to refresh the list.\n", CmdStyle.Render("--update-index"))
		return nil
	}

	fmt.Fprintln(p.stdout, TitleStyle.Render(title))
	fmt.Fprintln(p.stdout, renderEntries(entries))
	if p.query != "" {
		fmt.Fprintf(p.stdout, "\nFound %d template(s)\n", len(entries))
	} else {
		fmt.Fprintf(p.stdout, "\nTotal: %d templates\n", len(entries))
	}
	return nil
}

// renderEntries renders entries as a two-column table, languages before
// global templates, each group in name order.
func renderEntries(entries []catalog.Entry) string {
	var rows [][]string
	for _, category := range []string{catalog.CategoryLanguage, catalog.CategoryGlobal} {
		for _, e := range entries {
			if e.Category == category {
				rows = append(rows, []string{e.Name, e.Category})
			}
		}
	}
	for _, e := range entries {
		if e.Category != catalog.CategoryLanguage && e.Category != catalog.CategoryGlobal {
			rows = append(rows, []string{e.Name, e.Category})
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("Template", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableCellStyle.Foreground(ColorHighlight)
			default:
				return tableCellStyle.Foreground(ColorMuted)
			}
		}).
		String()
}
