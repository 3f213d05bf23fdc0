// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"strings"

	"github.com/gi-cli/gi/internal/catalog"
)

const (
	fenceOpen  = "###> "
	fenceClose = "###< "
)

// FenceStart is the marker that opens a fenced section for name.
func FenceStart(name string) string {
	return fenceOpen + name + catalog.TemplateSuffix
}

// FenceEnd is the marker that closes a fenced section for name.
func FenceEnd(name string) string {
	return fenceClose + name + catalog.TemplateSuffix
}

// ParseFence reports whether line is a fence marker. It returns the
// template name and whether the marker opens the section.
func ParseFence(line string) (name string, open, ok bool) {
	line = strings.TrimRight(line, " \t")
	var rest string
	switch {
	case strings.HasPrefix(line, fenceOpen):
		rest, open = line[len(fenceOpen):], true
	case strings.HasPrefix(line, fenceClose):
		rest = line[len(fenceClose):]
	default:
		return "", false, false
	}
	name = strings.TrimSuffix(rest, catalog.TemplateSuffix)
	if name == "" {
		return "", false, false
	}
	return name, open, true
}
