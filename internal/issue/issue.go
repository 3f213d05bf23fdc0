// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	CatalogUnavailableId Id = iota + 1
	TemplateNotFoundId
	NetworkUnavailableId
	NoTemplatesFetchedId
	NothingDetectedId
	OutputExistsId
	ConfigLoadFailedId
	AliasFileInvalidId
	PermissionDeniedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a Markdown troubleshooting guide.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	catalogUnavailableIssue = &Issue{
		id: CatalogUnavailableId,
		mdMsg: `
# Could not load the template list!

gi needs the list of available templates to resolve names, and it could
neither download it nor find a cached copy.

## Things you can try:
- Check your internet connection and retry
- If you hit the GitHub API rate limit, set a token:
~~~
$ export GITHUB_TOKEN=<token>
~~~
- Run once while online so later runs can work from the cache:
~~~
$ gi --update-index
~~~`,
		docLinks: []HttpLink{"https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api"},
	}

	templateNotFoundIssue = &Issue{
		id: TemplateNotFoundId,
		mdMsg: `
# Template not found!

At least one name did not match any template.

## Things you can try:
- Search for the template by part of its name:
~~~
$ gi search python
~~~
- List everything that is available:
~~~
$ gi list
~~~
- Refresh the template list if it may be outdated:
~~~
$ gi --update-index python
~~~`,
	}

	networkUnavailableIssue = &Issue{
		id: NetworkUnavailableId,
		mdMsg: `
# Network unavailable!

gi could not reach GitHub and had no cached copy of some templates.

## Things you can try:
- Check your internet connection or proxy settings
- Increase the timeout in your config file:
~~~cue
network_timeout: "60s"
~~~
- Templates fetched once are cached and served when offline (see ` + "`gi doctor`" + `)`,
	}

	noTemplatesFetchedIssue = &Issue{
		id: NoTemplatesFetchedId,
		mdMsg: `
# No templates could be fetched!

Nothing was written because every requested template failed.

## Things you can try:
- Check the errors above for each template
- Run ` + "`gi doctor`" + ` to inspect the cache and connectivity`,
	}

	nothingDetectedIssue = &Issue{
		id: NothingDetectedId,
		mdMsg: `
# Nothing to combine!

No template names were given and none could be detected.

## Things you can try:
- Name the templates explicitly:
~~~
$ gi go,node,macos
~~~
- Run gi from the root of your project so project files can be detected`,
	}

	outputExistsIssue = &Issue{
		id: OutputExistsId,
		mdMsg: `
# The output file already exists!

gi does not overwrite files unless asked to.

## Things you can try:
- Add the new templates to the existing file:
~~~
$ gi --append go
~~~
- Replace the file:
~~~
$ gi --force go
~~~
- Write somewhere else or print to the terminal:
~~~
$ gi -o other.gitignore go
$ gi --stdout go
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be parsed or failed validation.

## Things you can try:
- Show where gi looks for its configuration:
~~~
$ gi config path
~~~
- Write a fresh default configuration to compare against:
~~~
$ gi config init --force
~~~`,
		docLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	aliasFileInvalidIssue = &Issue{
		id: AliasFileInvalidId,
		mdMsg: `
# Invalid alias file!

The alias file must be a JSON object mapping short names to template names.
Comments and trailing commas are allowed.

## Example:
~~~jsonc
{
  // my shortcuts
  "tf": "Terraform",
  "idea": "Global/JetBrains",
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

gi could not write a file it needs.

## Things you can try:
- Check the permissions of the output file and its directory
- Check the permissions of the cache directory (see ` + "`gi doctor`" + `)
- Point the cache somewhere writable:
~~~
$ export GI_CACHE_DIR=/tmp/gi-cache
~~~`,
	}

	issues = map[Id]*Issue{
		catalogUnavailableIssue.Id(): catalogUnavailableIssue,
		templateNotFoundIssue.Id():   templateNotFoundIssue,
		networkUnavailableIssue.Id(): networkUnavailableIssue,
		noTemplatesFetchedIssue.Id(): noTemplatesFetchedIssue,
		nothingDetectedIssue.Id():    nothingDetectedIssue,
		outputExistsIssue.Id():       outputExistsIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		aliasFileInvalidIssue.Id():   aliasFileInvalidIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the guide with its links appended.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks)+len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also:\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			sb.WriteString("- " + string(link) + "\n")
		}
	}
	return sb.String()
}

// Render renders the guide for the terminal with the given glamour style
// ("dark", "light", "notty", "auto" or a style file path).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

// Values returns every guide ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
