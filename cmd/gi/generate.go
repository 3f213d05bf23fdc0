// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/fetch"
	"github.com/gi-cli/gi/internal/issue"
	"github.com/gi-cli/gi/internal/merge"
	"github.com/gi-cli/gi/internal/names"
	"github.com/gi-cli/gi/internal/sink"
)

// templateFetcher fetches a batch of templates by user-supplied name.
type templateFetcher interface {
	FetchAll(ctx context.Context, rawInputs []string) ([]fetch.Result, error)
}

// generateParams bundles the dependencies and flags for the root command,
// enabling runGenerate to be tested without a real Cobra command or network.
type generateParams struct {
	stdout  io.Writer
	stderr  io.Writer
	fetcher templateFetcher
	detect  func() []string
	now     time.Time
	source  string // description for the header, e.g. "github/gitignore (HEAD)"

	inputs     []string
	output     string
	mode       sink.Mode
	toStdout   bool
	autoDetect bool
	merge      merge.Options
	header     bool
}

// generateFlags are the root command's own flags.
type generateFlags struct {
	output       string
	appendMode   bool
	force        bool
	toStdout     bool
	noHeader     bool
	noFence      bool
	noAutoDetect bool
	normalize    bool
}

func newGenerateCommand(app *App, g *globalFlags) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "gi [template...]",
		Short: "Combine .gitignore templates into a single file",
		Long: TitleStyle.Render("gi") + SubtitleStyle.Render(" - combine .gitignore templates from github/gitignore") + `

Template names are matched case-insensitively and may be separated by
spaces or commas. Short aliases such as "py", "js" or "mac" are understood.
With no names, gi detects templates from the operating system, the project
files in the current directory and the toolchains on PATH.

Templates are cached; fresh copies are used without touching the network
and stale copies are served when GitHub cannot be reached.

` + SubtitleStyle.Render("Examples:") + `
  gi python,node,macos      Write .gitignore for Python, Node and macOS
  gi --append terraform     Add Terraform to an existing .gitignore
  gi --stdout go            Print the result instead of writing a file
  gi list                   List every available template
  gi search jet             Find templates by part of their name`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			silence(cmd)

			return app.withSession(cmd.Context(), g, func(s *session) error {
				mode := sink.ModeCreate
				switch {
				case f.force:
					mode = sink.ModeForce
				case f.appendMode:
					mode = sink.ModeAppend
				}

				fenced := s.cfg.UI.Fenced
				if cmd.Flags().Changed("fenced") {
					fenced, _ = cmd.Flags().GetBool("fenced")
				}
				if f.noFence {
					fenced = false
				}

				p := generateParams{
					stdout:     app.stdout,
					stderr:     app.stderr,
					fetcher:    s.engine,
					detect:     app.detector().Detect,
					now:        app.Clock.Now(),
					source:     s.client.Source(),
					inputs:     args,
					output:     f.output,
					mode:       mode,
					toStdout:   f.toStdout,
					autoDetect: s.cfg.UI.AutoDetect && !f.noAutoDetect,
					header:     s.cfg.UI.Header && !f.noHeader,
					merge: merge.Options{
						Fenced:              fenced,
						NormalizeWhitespace: s.cfg.UI.NormalizeWhitespace || f.normalize,
					},
				}
				return runGenerate(cmd.Context(), p)
			})
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", ".gitignore", "output file")
	cmd.Flags().BoolVarP(&f.appendMode, "append", "a", false, "append templates missing from the output file")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "overwrite the output file")
	cmd.Flags().BoolVar(&f.toStdout, "stdout", false, "print the result instead of writing a file")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "omit the generated-by header")
	cmd.Flags().BoolVar(&f.noFence, "no-fence", false, "use plain \"# Name\" section headers instead of ###> markers")
	cmd.Flags().Bool("fenced", false, "wrap each template in ###> / ###< markers (default from config)")
	cmd.Flags().BoolVar(&f.noAutoDetect, "no-auto-detect", false, "do not detect templates when none are given")
	cmd.Flags().BoolVar(&f.normalize, "normalize-whitespace", false, "treat rules differing only in inner whitespace as duplicates")
	cmd.MarkFlagsMutuallyExclusive("append", "force")
	cmd.MarkFlagsMutuallyExclusive("fenced", "no-fence")
	cmd.MarkFlagsMutuallyExclusive("stdout", "append")

	return cmd
}

// runGenerate is the core generate logic, separated from Cobra for
// testability. Per-template progress goes to stdout, or to stderr when the
// document itself is printed to stdout.
//
// Flow:
//  1. Parse names; with none, auto-detect.
//  2. Fetch all templates. Only an unavailable catalog fails the batch.
//  3. Report each template; stop when nothing was fetched.
//  4. Combine the fetched templates in input order.
//  5. Print or write the document.
func runGenerate(ctx context.Context, p generateParams) error {
	status := p.stdout
	if p.toStdout {
		status = p.stderr
	}

	inputs := names.ParseList(p.inputs...)
	if len(inputs) == 0 {
		detected, err := autoDetect(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(status, "%s %s\n", SubtitleStyle.Render("Detected:"), CmdStyle.Render(strings.Join(detected, ", ")))
		inputs = detected
	}

	results, err := p.fetcher.FetchAll(ctx, inputs)
	if err != nil {
		return batchError(err)
	}

	for _, r := range results {
		reportResult(status, r)
	}

	fetched := fetch.Succeeded(results)
	failed := fetch.Failed(results)
	if len(fetched) == 0 {
		return nothingFetchedError(failed)
	}
	if len(failed) > 0 {
		fmt.Fprintf(status, "\n%s %d template(s) could not be fetched; see %s\n",
			WarningStyle.Render("Warning:"), len(failed), CmdStyle.Render("gi search <name>"))
	}

	templateNames := make([]string, 0, len(fetched))
	sources := make([]merge.Source, 0, len(fetched))
	for _, r := range fetched {
		templateNames = append(templateNames, r.Name)
		sources = append(sources, merge.Source{Name: r.Name, Content: r.Content})
	}

	opts := p.merge
	if p.header {
		opts.Preamble = merge.Header(p.source, templateNames, p.now)
	}
	doc := merge.Combine(sources, opts)

	if p.toStdout {
		_, err := p.stdout.Write(doc.Bytes())
		return err
	}

	outcome, err := sink.Write(p.output, doc.String(), p.mode)
	if err != nil {
		return writeError(p.output, err)
	}

	if outcome.Unchanged {
		fmt.Fprintf(status, "%s %s already contains every requested template\n", markOK, CmdStyle.Render(p.output))
		return nil
	}
	verb := "Created"
	if p.mode != sink.ModeCreate {
		verb = "Updated"
	}
	fmt.Fprintf(status, "%s %s %s\n", markOK, verb, CmdStyle.Render(p.output))
	fmt.Fprintf(status, "Combined %d template(s): %s\n", len(templateNames), strings.Join(templateNames, ", "))
	if len(outcome.Skipped) > 0 {
		fmt.Fprintf(status, "%s %s\n", SubtitleStyle.Render("Already present, skipped:"), strings.Join(outcome.Skipped, ", "))
	}
	return nil
}

func autoDetect(p generateParams) ([]string, error) {
	ec := issue.NewErrorContext().
		WithOperation("choose templates").
		WithIssue(issue.NothingDetectedId)
	if !p.autoDetect {
		return nil, ec.
			WithSuggestion("Name the templates to combine, e.g. 'gi go,node'").
			Wrap(errors.New("no template names given and auto-detection is disabled")).
			BuildError()
	}
	detected := p.detect()
	if len(detected) == 0 {
		return nil, ec.
			WithSuggestion("Name the templates to combine, e.g. 'gi go,node'").
			Wrap(errors.New("no templates could be detected")).
			BuildError()
	}
	return detected, nil
}

func reportResult(w io.Writer, r fetch.Result) {
	label := r.Request.RawInput
	if r.Name != "" {
		label = r.Name
	}
	if !r.OK() {
		fmt.Fprintf(w, "%s %s: %v\n", markFail, label, r.Err)
		return
	}
	switch {
	case r.Stale:
		fmt.Fprintf(w, "%s %s %s\n", markStale, label, WarningStyle.Render("(stale cached copy)"))
	case r.Origin == fetch.OriginCache:
		fmt.Fprintf(w, "%s %s %s\n", markOK, label, VerboseStyle.Render("(cached)"))
	default:
		fmt.Fprintf(w, "%s %s\n", markOK, label)
	}
}

// batchError converts a batch-fatal FetchAll error into an actionable one.
func batchError(err error) error {
	if errors.Is(err, fetch.ErrCatalogUnavailable) {
		ec := issue.NewErrorContext().
			WithOperation("load the template list").
			WithIssue(issue.CatalogUnavailableId).
			Wrap(err)
		if errors.Is(err, fetch.ErrOffline) {
			ec.WithSuggestion("Run once without --offline to populate the cache")
		} else {
			ec.WithSuggestion("Check your connection, or set GITHUB_TOKEN if you are rate limited")
		}
		return ec.BuildError()
	}
	return fmt.Errorf("fetching templates: %w", err)
}

// nothingFetchedError explains why every template failed.
func nothingFetchedError(failed []fetch.Result) error {
	errs := make([]error, 0, len(failed))
	allNotFound := true
	for _, r := range failed {
		errs = append(errs, r.Err)
		if !errors.Is(r.Err, catalog.ErrNotFound) {
			allNotFound = false
		}
	}
	cause := errors.Join(errs...)

	ec := issue.NewErrorContext().WithOperation("fetch templates").Wrap(cause)
	switch {
	case allNotFound:
		ec.WithIssue(issue.TemplateNotFoundId).
			WithSuggestion("Run 'gi search <name>' to find the right template name")
	case errors.Is(cause, catalog.ErrNetwork):
		ec.WithIssue(issue.NetworkUnavailableId).
			WithSuggestion("Check your connection; cached templates are served when offline")
	default:
		ec.WithIssue(issue.NoTemplatesFetchedId)
	}
	return ec.BuildError()
}

// writeError converts a sink failure into an actionable one.
func writeError(path string, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("write output").
		WithResource(path).
		Wrap(err)
	switch {
	case errors.Is(err, sink.ErrExists):
		ec.WithIssue(issue.OutputExistsId).
			WithSuggestions("Use --append to add missing templates", "Use --force to overwrite", "Use --stdout to print instead")
	case errors.Is(err, fs.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId)
	}
	return ec.BuildError()
}
