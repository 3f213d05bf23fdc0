// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func src(name, content string) Source {
	return Source{Name: name, Content: []byte(content)}
}

func TestCombine_DeduplicatesAcrossSections(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{src("A", "x\ny\n"), src("B", "y\nz\n")}, Options{})

	want := []string{"# A", "x", "y", "# B", "z"}
	if got := doc.Texts(); !slices.Equal(got, want) {
		t.Errorf("Texts() = %q, want %q", got, want)
	}
	if got := doc.String(); got != "# A\nx\ny\n# B\nz\n" {
		t.Errorf("String() = %q", got)
	}
}

func TestCombine_EndToEndOutput(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{
		src("Python", "# Byte-compiled\n__pycache__/\n*.py[cod]\n\n\n\n.env\n"),
		src("Node", "node_modules/\n.env\n# Logs\nlogs\n"),
	}, Options{})

	want := strings.Join([]string{
		"# Python",
		"# Byte-compiled",
		"__pycache__/",
		"*.py[cod]",
		"",
		".env",
		"# Node",
		"node_modules/",
		"# Logs",
		"logs",
	}, "\n") + "\n"
	if got := doc.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestCombine_Deterministic(t *testing.T) {
	t.Parallel()

	sources := []Source{src("Go", "*.exe\nvendor/\n"), src("Rust", "target/\n*.exe\n")}
	first := Combine(sources, Options{Fenced: true}).String()
	for range 10 {
		if got := Combine(sources, Options{Fenced: true}).String(); got != first {
			t.Fatalf("Combine output changed between runs:\n%s\nvs\n%s", got, first)
		}
	}
}

func TestCombine_CommentsAndBlanksNotDeduplicated(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{
		src("A", "# shared\nfoo\n"),
		src("B", "# shared\nbar\n"),
	}, Options{})

	want := []string{"# A", "# shared", "foo", "# B", "# shared", "bar"}
	if got := doc.Texts(); !slices.Equal(got, want) {
		t.Errorf("Texts() = %q, want %q", got, want)
	}
}

func TestCombine_BlankLineHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []Source
		want    []string
	}{
		{
			name:    "leading blanks in a section are dropped",
			sources: []Source{src("A", "\n\n\nfoo\n")},
			want:    []string{"# A", "foo"},
		},
		{
			name:    "blank runs collapse to one",
			sources: []Source{src("A", "foo\n\n  \n\t\nbar\n")},
			want:    []string{"# A", "foo", "", "bar"},
		},
		{
			name:    "trailing blank run keeps one separator",
			sources: []Source{src("A", "foo\n\n\n\n"), src("B", "bar\n")},
			want:    []string{"# A", "foo", "", "# B", "bar"},
		},
		{
			name:    "document never ends with a blank",
			sources: []Source{src("A", "foo\n\n\n")},
			want:    []string{"# A", "foo"},
		},
		{
			name:    "duplicate removal does not leave double blanks",
			sources: []Source{src("A", "foo\n"), src("B", "bar\n\nfoo\n\nbaz\n")},
			want:    []string{"# A", "foo", "# B", "bar", "", "baz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Combine(tt.sources, Options{}).Texts(); !slices.Equal(got, tt.want) {
				t.Errorf("Texts() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCombine_LineEndings(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{
		src("A", "foo\r\nbar\r\n"),
		src("B", "bar\rbaz"),
	}, Options{})

	want := "# A\nfoo\nbar\n# B\nbaz\n"
	if got := doc.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCombine_TrailingWhitespaceIgnoredForDedup(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{src("A", "foo\n"), src("B", "foo  \t\n")}, Options{})
	if got := doc.Rules(); !slices.Equal(got, []string{"foo"}) {
		t.Errorf("Rules() = %q, want [foo]", got)
	}
}

func TestCombine_NormalizeWhitespace(t *testing.T) {
	t.Parallel()

	sources := []Source{src("A", "a  b\n"), src("B", "a\tb\n")}

	if got := Combine(sources, Options{}).Rules(); len(got) != 2 {
		t.Errorf("default Rules() = %q, want both variants", got)
	}
	if got := Combine(sources, Options{NormalizeWhitespace: true}).Rules(); !slices.Equal(got, []string{"a  b"}) {
		t.Errorf("normalized Rules() = %q, want first variant only", got)
	}
}

func TestCombine_Fenced(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{src("Go", "vendor/\n\n\n\n"), src("Node", "node_modules/\n")}, Options{Fenced: true})

	want := []string{
		"###> Go.gitignore",
		"vendor/",
		"###< Go.gitignore",
		"",
		"###> Node.gitignore",
		"node_modules/",
		"###< Node.gitignore",
	}
	if got := doc.Texts(); !slices.Equal(got, want) {
		t.Errorf("Texts() = %q, want %q", got, want)
	}
}

func TestCombine_Preamble(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	header := Header("github/gitignore (HEAD)", []string{"Go", "Node"}, at)
	doc := Combine([]Source{src("Go", "vendor/\n")}, Options{Preamble: header})

	want := []string{
		"# .gitignore generated by gi",
		"# Source: github/gitignore (HEAD), fetched 2024-05-01 12:30:00 UTC",
		"# Templates: Go, Node",
		"",
		"# Go",
		"vendor/",
	}
	if got := doc.Texts(); !slices.Equal(got, want) {
		t.Errorf("Texts() = %q, want %q", got, want)
	}
	if lines := doc.Lines(); lines[0].Section != "" || lines[4].Section != "Go" {
		t.Errorf("unexpected sections: %q, %q", lines[0].Section, lines[4].Section)
	}
}

func TestCombine_Empty(t *testing.T) {
	t.Parallel()

	doc := Combine(nil, Options{})
	if doc.Len() != 0 || doc.String() != "" {
		t.Errorf("empty Combine = %q", doc.String())
	}

	doc = Combine([]Source{src("Empty", "")}, Options{})
	if got := doc.String(); got != "# Empty\n" {
		t.Errorf("String() = %q", got)
	}
}

func TestDocument_Classification(t *testing.T) {
	t.Parallel()

	doc := Combine([]Source{src("A", "# c\n\nrule\n")}, Options{})
	var kinds []string
	for _, l := range doc.Lines() {
		kinds = append(kinds, l.Kind.String())
	}
	want := []string{"header", "comment", "blank", "rule"}
	if !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
	if got := doc.Sections(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Sections() = %v", got)
	}
}

func TestParseFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line     string
		wantName string
		wantOpen bool
		wantOK   bool
	}{
		{FenceStart("Global/macOS"), "Global/macOS", true, true},
		{FenceEnd("Go"), "Go", false, true},
		{"###> Go.gitignore  ", "Go", true, true},
		{"###> ", "", false, false},
		{"# Go", "", false, false},
		{"###>Go.gitignore", "", false, false},
	}

	for _, tt := range tests {
		name, open, ok := ParseFence(tt.line)
		if name != tt.wantName || open != tt.wantOpen || ok != tt.wantOK {
			t.Errorf("ParseFence(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.line, name, open, ok, tt.wantName, tt.wantOpen, tt.wantOK)
		}
	}
}
