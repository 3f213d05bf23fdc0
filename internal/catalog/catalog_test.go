// SPDX-License-Identifier: MPL-2.0

package catalog

import "testing"

func testCatalog() *Catalog {
	return New([]Entry{
		{Name: "Python", Locator: "https://example.test/Python.gitignore", Category: CategoryLanguage},
		{Name: "Go", Locator: "https://example.test/Go.gitignore", Category: CategoryLanguage},
		{Name: "Global/macOS", Locator: "https://example.test/Global/macOS.gitignore", Category: CategoryGlobal},
		{Name: "Global/Vim", Locator: "https://example.test/Global/Vim.gitignore", Category: CategoryGlobal},
		{Name: "Python", Locator: "https://example.test/dup.gitignore", Category: CategoryLanguage},
	})
}

func TestNew_SortsAndDropsDuplicates(t *testing.T) {
	t.Parallel()

	c := testCatalog()
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}

	want := []string{"Global/Vim", "Global/macOS", "Go", "Python"}
	for i, e := range c.Entries() {
		if e.Name != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, e.Name, want[i])
		}
	}

	e, _ := c.Lookup("Python")
	if e.Locator != "https://example.test/Python.gitignore" {
		t.Errorf("duplicate name should keep first entry, got locator %q", e.Locator)
	}
}

func TestLookupFold(t *testing.T) {
	t.Parallel()

	c := testCatalog()
	for _, in := range []string{"python", "PYTHON", "pYtHoN", "Python"} {
		e, ok := c.LookupFold(in)
		if !ok || e.Name != "Python" {
			t.Errorf("LookupFold(%q) = %q, %v; want Python", in, e.Name, ok)
		}
	}
	if _, ok := c.Lookup("python"); ok {
		t.Error("Lookup must be case-sensitive")
	}
}

func TestLookupBase(t *testing.T) {
	t.Parallel()

	c := New([]Entry{
		{Name: "Global/macOS"},
		{Name: "Global/Vim"},
		{Name: "community/Vim"},
	})

	if e, ok := c.LookupBase("macos"); !ok || e.Name != "Global/macOS" {
		t.Errorf("LookupBase(macos) = %q, %v", e.Name, ok)
	}
	if _, ok := c.LookupBase("vim"); ok {
		t.Error("LookupBase(vim) should be ambiguous")
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	got := testCatalog().Search("GLOBAL")
	if len(got) != 2 {
		t.Fatalf("Search(GLOBAL) returned %d entries, want 2", len(got))
	}
}

func TestNilCatalog(t *testing.T) {
	t.Parallel()

	var c *Catalog
	if c.Len() != 0 || c.Entries() != nil || c.Search("x") != nil {
		t.Error("nil catalog should behave as empty")
	}
	if _, ok := c.LookupFold("x"); ok {
		t.Error("nil catalog lookup should fail")
	}
}
