// SPDX-License-Identifier: MPL-2.0

package names

import (
	"strings"
	"unicode"

	"github.com/gi-cli/gi/internal/catalog"
)

// Resolver maps raw identifiers to canonical catalog names. It holds a
// catalog snapshot and an alias table and has no side effects.
type Resolver struct {
	catalog *catalog.Catalog
	aliases map[string]string
}

// NewResolver creates a Resolver. aliases keys are matched case-insensitively.
func NewResolver(c *catalog.Catalog, aliases map[string]string) *Resolver {
	return &Resolver{
		catalog: c,
		aliases: MergeAliases(aliases),
	}
}

// Resolve returns the canonical name for raw. Lookup order: alias table,
// exact match, case-insensitive match, unambiguous match on the last path
// segment. A trailing ".gitignore" is ignored. It reports false when nothing
// matches.
func (r *Resolver) Resolve(raw string) (string, bool) {
	name := StripSuffix(strings.TrimSpace(raw))
	if name == "" {
		return "", false
	}

	if target, ok := r.aliases[strings.ToLower(name)]; ok {
		if e, found := r.catalog.Lookup(target); found {
			return e.Name, true
		}
		if e, found := r.catalog.LookupFold(target); found {
			return e.Name, true
		}
		return "", false
	}

	if e, ok := r.catalog.Lookup(name); ok {
		return e.Name, true
	}
	if e, ok := r.catalog.LookupFold(name); ok {
		return e.Name, true
	}
	if !strings.Contains(name, "/") {
		if e, ok := r.catalog.LookupBase(name); ok {
			return e.Name, true
		}
	}
	return "", false
}

// StripSuffix removes a trailing ".gitignore" (any case) from name.
func StripSuffix(name string) string {
	suffix := catalog.TemplateSuffix
	if len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		return name[:len(name)-len(suffix)]
	}
	return name
}

// ParseList splits each input on commas and whitespace and returns the
// non-empty identifiers in order. Duplicates are kept; de-duplication
// happens after resolution.
func ParseList(inputs ...string) []string {
	var out []string
	for _, in := range inputs {
		out = append(out, strings.FieldsFunc(in, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})...)
	}
	return out
}
