// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"fmt"
	"strings"
	"time"
)

type (
	// Source is one fetched template.
	Source struct {
		Name    string
		Content []byte
	}

	// Options control how Combine lays out the document.
	Options struct {
		// Fenced wraps each section in "###> Name.gitignore" and
		// "###< Name.gitignore" markers instead of a "# Name" header.
		// Fenced documents can be appended to without duplicating sections.
		Fenced bool
		// NormalizeWhitespace collapses runs of spaces and tabs inside
		// rules when comparing them for duplicates.
		NormalizeWhitespace bool
		// Preamble lines are emitted before the first section.
		Preamble []string
	}

	builder struct {
		lines []Line
	}
)

// Combine merges sources in order into one Document.
func Combine(sources []Source, opts Options) *Document {
	b := &builder{}
	for _, text := range opts.Preamble {
		b.add(Line{Kind: Classify(text), Text: text})
	}
	if len(opts.Preamble) > 0 && len(sources) > 0 {
		b.add(Line{Kind: KindBlank})
	}

	seen := make(map[string]struct{})
	sections := make([]string, 0, len(sources))

	for _, src := range sources {
		sections = append(sections, src.Name)
		if opts.Fenced {
			b.add(Line{Kind: KindHeader, Text: FenceStart(src.Name), Section: src.Name})
		} else {
			b.add(Line{Kind: KindHeader, Text: "# " + src.Name, Section: src.Name})
		}

		for _, text := range SplitLines(string(src.Content)) {
			kind := Classify(text)
			switch kind {
			case KindBlank:
				if b.lastKind() == KindHeader {
					continue
				}
				text = ""
			case KindRule:
				key := dedupKey(text, opts.NormalizeWhitespace)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			b.add(Line{Kind: kind, Text: text, Section: src.Name})
		}

		if opts.Fenced {
			// The blank after the closing fence separates sections instead.
			b.trimTrailingBlanks()
			b.add(Line{Kind: KindHeader, Text: FenceEnd(src.Name), Section: src.Name})
			b.add(Line{Kind: KindBlank, Section: src.Name})
		}
	}

	b.trimTrailingBlanks()
	return &Document{lines: b.lines, sections: sections}
}

// Header builds the generated-by preamble naming the source and templates.
func Header(source string, templates []string, at time.Time) []string {
	return []string{
		"# .gitignore generated by gi",
		fmt.Sprintf("# Source: %s, fetched %s", source, at.UTC().Format("2006-01-02 15:04:05 UTC")),
		"# Templates: " + strings.Join(templates, ", "),
	}
}

func (b *builder) add(l Line) {
	if l.Kind == KindBlank {
		if len(b.lines) == 0 || b.lastKind() == KindBlank {
			return
		}
		l.Text = ""
	}
	b.lines = append(b.lines, l)
}

func (b *builder) lastKind() LineKind {
	if len(b.lines) == 0 {
		return KindBlank
	}
	return b.lines[len(b.lines)-1].Kind
}

func (b *builder) trimTrailingBlanks() {
	for len(b.lines) > 0 && b.lines[len(b.lines)-1].Kind == KindBlank {
		b.lines = b.lines[:len(b.lines)-1]
	}
}

// dedupKey is the comparison key for a rule line.
func dedupKey(rule string, normalize bool) string {
	key := strings.TrimRight(rule, " \t")
	if !normalize {
		return key
	}
	var sb strings.Builder
	inRun := false
	for _, r := range key {
		if r == ' ' || r == '\t' {
			if !inRun {
				sb.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		sb.WriteRune(r)
	}
	return sb.String()
}
