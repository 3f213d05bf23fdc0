// SPDX-License-Identifier: MPL-2.0

package names

import (
	"slices"
	"strings"
	"testing"

	"github.com/gi-cli/gi/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Name: "Python"},
		{Name: "Node"},
		{Name: "Go"},
		{Name: "C++"},
		{Name: "VisualStudio"},
		{Name: "Global/macOS"},
		{Name: "Global/VisualStudioCode"},
		{Name: "Global/JetBrains"},
		{Name: "Global/Vim"},
		{Name: "community/Vim"},
	})
}

func TestResolve_CaseVariantsYieldCanonical(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog(), DefaultAliases())
	for _, e := range testCatalog().Entries() {
		variants := []string{e.Name, strings.ToLower(e.Name), strings.ToUpper(e.Name), e.Name + ".gitignore", strings.ToUpper(e.Name) + ".GITIGNORE"}
		for _, v := range variants {
			got, ok := r.Resolve(v)
			if !ok || got != e.Name {
				t.Errorf("Resolve(%q) = %q, %v; want %q", v, got, ok, e.Name)
			}
		}
	}
}

func TestResolve_AliasWinsOverCaseInsensitiveMatch(t *testing.T) {
	t.Parallel()

	// "Mac" exists as a differently-cased catalog entry; the alias must still win.
	cat := catalog.New([]catalog.Entry{{Name: "Mac"}, {Name: "Global/macOS"}})
	r := NewResolver(cat, map[string]string{"mac": "Global/macOS"})

	if got, ok := r.Resolve("mac"); !ok || got != "Global/macOS" {
		t.Errorf("Resolve(mac) = %q, %v; want Global/macOS", got, ok)
	}
	if got, ok := r.Resolve("MAC"); !ok || got != "Global/macOS" {
		t.Errorf("Resolve(MAC) = %q, %v; want Global/macOS", got, ok)
	}
}

func TestResolve_AliasTargetMatchedCaseInsensitively(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog(), map[string]string{"ide": "global/jetbrains"})
	if got, ok := r.Resolve("IDE"); !ok || got != "Global/JetBrains" {
		t.Errorf("Resolve(IDE) = %q, %v", got, ok)
	}
}

func TestResolve_AliasToMissingTargetIsUnresolved(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog(), map[string]string{"python": "Python3"})
	if got, ok := r.Resolve("python"); ok {
		t.Errorf("Resolve(python) = %q; alias to a missing template must not fall through", got)
	}
}

func TestResolve_DefaultAliases(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog(), DefaultAliases())
	tests := map[string]string{
		"py":            "Python",
		"cpp":           "C++",
		"vscode":        "Global/VisualStudioCode",
		"macos":         "Global/macOS",
		"IntelliJ":      "Global/JetBrains",
		"csharp":        "VisualStudio",
		"golang":        "Go",
		"js":            "Node",
		"vim":           "Global/Vim",
		"npm.gitignore": "Node",
	}
	for in, want := range tests {
		if got, ok := r.Resolve(in); !ok || got != want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
}

func TestResolve_BaseNameFallback(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog(), nil)
	if got, ok := r.Resolve("visualstudiocode"); !ok || got != "Global/VisualStudioCode" {
		t.Errorf("Resolve(visualstudiocode) = %q, %v", got, ok)
	}
	// Vim exists under Global/ and community/: ambiguous without an alias.
	if got, ok := r.Resolve("vim"); ok {
		t.Errorf("Resolve(vim) = %q; expected ambiguity", got)
	}
}

func TestResolve_Unresolved(t *testing.T) {
	t.Parallel()

	r := NewResolver(testCatalog(), DefaultAliases())
	for _, in := range []string{"", "   ", "Cobol", ".gitignore", "Global/Nope"} {
		if got, ok := r.Resolve(in); ok {
			t.Errorf("Resolve(%q) = %q; want unresolved", in, got)
		}
	}
}

func TestResolve_NilCatalog(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, DefaultAliases())
	if _, ok := r.Resolve("python"); ok {
		t.Error("nothing resolves against a nil catalog")
	}
}

func TestMergeAliases(t *testing.T) {
	t.Parallel()

	got := MergeAliases(
		map[string]string{"py": "Python", "js": "Node"},
		map[string]string{"PY": "Python3", " ": "x", "empty": ""},
	)
	if got["py"] != "Python3" {
		t.Errorf("override lost: py = %q", got["py"])
	}
	if got["js"] != "Node" {
		t.Errorf("base lost: js = %q", got["js"])
	}
	if _, ok := got["empty"]; ok {
		t.Error("empty target should be skipped")
	}
	if len(got) != 2 {
		t.Errorf("unexpected table %v", got)
	}
}

func TestDefaultAliases_ReturnsCopy(t *testing.T) {
	t.Parallel()

	a := DefaultAliases()
	a["py"] = "Changed"
	if DefaultAliases()["py"] != "Python" {
		t.Error("DefaultAliases must return an independent copy")
	}
}

func TestParseList(t *testing.T) {
	t.Parallel()

	got := ParseList("python, node  go", "", "vscode,,macos\tvim")
	want := []string{"python", "node", "go", "vscode", "macos", "vim"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseList = %v, want %v", got, want)
	}
}
