// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gi-cli/gi/internal/issue"
)

// cacheCleaner is the part of the cache that cache clean uses.
type cacheCleaner interface {
	Dir() string
	Clear() error
}

func newCacheCommand(app *App, g *globalFlags) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the template cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove the cached template list and every cached template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)
			return app.withSession(cmd.Context(), g, func(s *session) error {
				return runCacheClean(app.stdout, s.store)
			})
		},
	})

	return cacheCmd
}

func runCacheClean(stdout io.Writer, store cacheCleaner) error {
	if err := store.Clear(); err != nil {
		return issue.NewErrorContext().
			WithOperation("clear cache").
			WithResource(store.Dir()).
			WithIssue(issue.PermissionDeniedId).
			Wrap(err).
			BuildError()
	}
	fmt.Fprintf(stdout, "%s Cleared %s\n", markOK, CmdStyle.Render(store.Dir()))
	return nil
}
