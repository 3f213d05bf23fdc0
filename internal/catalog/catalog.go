// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"slices"
	"strings"
)

const (
	// TemplateSuffix is the file suffix every template carries in the remote repository.
	TemplateSuffix = ".gitignore"

	// CategoryLanguage is the category of templates at the repository root.
	CategoryLanguage = "Language/Framework"
	// CategoryGlobal is the category of templates under Global/.
	CategoryGlobal = "Global/Editor"
)

type (
	// Entry is one available template. Name is the canonical, case-preserving
	// identifier (e.g. "Python", "Global/macOS"); Locator is the URL its body
	// is downloaded from.
	Entry struct {
		Name     string `json:"name" cbor:"name"`
		Locator  string `json:"locator" cbor:"locator"`
		Category string `json:"category" cbor:"category"`
	}

	// Catalog is the full, immutable list of available templates. It is always
	// replaced wholesale, never patched.
	Catalog struct {
		entries []Entry
		byName  map[string]int
		byFold  map[string]int
	}
)

// New builds a Catalog from entries. Entries are sorted by name; when two
// entries share a canonical name the first one wins.
func New(entries []Entry) *Catalog {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	sorted = slices.CompactFunc(sorted, func(a, b Entry) bool {
		return a.Name == b.Name
	})

	c := &Catalog{
		entries: sorted,
		byName:  make(map[string]int, len(sorted)),
		byFold:  make(map[string]int, len(sorted)),
	}
	for i, e := range sorted {
		c.byName[e.Name] = i
		folded := strings.ToLower(e.Name)
		if _, exists := c.byFold[folded]; !exists {
			c.byFold[folded] = i
		}
	}
	return c
}

// Entries returns a copy of all entries sorted by name.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries)
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup returns the entry whose canonical name equals name exactly.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// LookupFold returns the entry whose canonical name equals name ignoring case.
func (c *Catalog) LookupFold(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byFold[strings.ToLower(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// LookupBase returns the single entry whose last path segment equals base
// ignoring case. It reports false when there is no match or when more than
// one entry matches.
func (c *Catalog) LookupBase(base string) (Entry, bool) {
	if c == nil || base == "" {
		return Entry{}, false
	}
	var (
		found Entry
		count int
	)
	for _, e := range c.entries {
		if strings.EqualFold(BaseName(e.Name), base) {
			found = e
			count++
		}
	}
	return found, count == 1
}

// Search returns entries whose canonical name contains query, ignoring case.
func (c *Catalog) Search(query string) []Entry {
	if c == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Entry
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}

// BaseName returns the last slash-separated segment of a canonical name.
func BaseName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// CategoryFor returns the category label for templates found in dir.
func CategoryFor(dir string) string {
	switch dir {
	case "":
		return CategoryLanguage
	case "Global":
		return CategoryGlobal
	default:
		return dir
	}
}
