// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"strings"
)

const (
	// KindBlank is an empty or whitespace-only line.
	KindBlank LineKind = iota
	// KindComment is a line whose first non-space character is '#'.
	KindComment
	// KindHeader is a section header or fence marker emitted by Combine.
	KindHeader
	// KindRule is any other line: an ignore pattern.
	KindRule
)

type (
	// LineKind classifies a document line.
	LineKind int

	// Line is one line of a Document.
	Line struct {
		Kind LineKind
		Text string
		// Section is the template the line came from; empty for preamble lines.
		Section string
	}

	// Document is an immutable combined gitignore document.
	Document struct {
		lines    []Line
		sections []string
	}
)

// String returns the name of the line kind.
func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindHeader:
		return "header"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Lines returns a copy of the document lines.
func (d *Document) Lines() []Line {
	if d == nil {
		return nil
	}
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// Texts returns the text of every line in order.
func (d *Document) Texts() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.lines))
	for i, l := range d.lines {
		out[i] = l.Text
	}
	return out
}

// Rules returns the text of the rule lines in order.
func (d *Document) Rules() []string {
	if d == nil {
		return nil
	}
	var out []string
	for _, l := range d.lines {
		if l.Kind == KindRule {
			out = append(out, l.Text)
		}
	}
	return out
}

// Sections returns the template names in the order they were combined.
func (d *Document) Sections() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.sections...)
}

// Len returns the number of lines.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.lines)
}

// String renders the document with LF line endings and exactly one
// trailing newline. An empty document renders as "".
func (d *Document) String() string {
	if d.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for _, l := range d.lines {
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Bytes is String as a byte slice.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

// Classify returns the kind of a template line.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return KindBlank
	case strings.HasPrefix(trimmed, "#"):
		return KindComment
	default:
		return KindRule
	}
}

// SplitLines splits content into lines, treating CRLF, CR and LF alike.
// A final line terminator does not produce a trailing empty line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
