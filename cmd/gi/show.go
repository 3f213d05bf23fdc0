// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type showParams struct {
	stdout  io.Writer
	stderr  io.Writer
	fetcher templateFetcher
	name    string
}

func newShowCommand(app *App, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "show <template>",
		Short:   "Print the raw content of a template",
		Example: "  gi show python\n  gi show global/macos",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			return app.withSession(cmd.Context(), g, func(s *session) error {
				return runShow(cmd.Context(), showParams{
					stdout:  app.stdout,
					stderr:  app.stderr,
					fetcher: s.engine,
					name:    args[0],
				})
			})
		},
	}
}

// runShow writes one template body to stdout unchanged. Notes about stale
// copies go to stderr so the output can be redirected.
func runShow(ctx context.Context, p showParams) error {
	results, err := p.fetcher.FetchAll(ctx, []string{p.name})
	if err != nil {
		return batchError(err)
	}
	if len(results) == 0 {
		return nothingFetchedError(nil)
	}

	r := results[0]
	if !r.OK() {
		return nothingFetchedError(results)
	}
	if r.Stale {
		fmt.Fprintln(p.stderr, WarningStyle.Render(fmt.Sprintf("Showing a stale cached copy of %s.", r.Name)))
	}
	_, err = p.stdout.Write(r.Content)
	return err
}
