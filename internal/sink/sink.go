// SPDX-License-Identifier: MPL-2.0

// Package sink writes combined documents to disk. Every write replaces the
// target atomically, so readers see either the old file or the new one.
package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/gi-cli/gi/internal/merge"
)

const (
	// ModeCreate writes a new file and fails if the target exists.
	ModeCreate Mode = iota
	// ModeAppend adds to an existing file, skipping fenced sections it
	// already contains. A missing file is created.
	ModeAppend
	// ModeForce overwrites the target.
	ModeForce
)

const newFilePerm fs.FileMode = 0o644

// ErrExists is returned in ModeCreate when the target already exists.
var ErrExists = errors.New("file already exists")

type (
	// Mode selects how Write treats an existing target.
	Mode int

	// Outcome describes what Write did.
	Outcome struct {
		// Skipped lists fenced sections not appended because the file
		// already had them.
		Skipped []string
		// Unchanged is set when appending would not add anything, in which
		// case the file was left untouched.
		Unchanged bool
	}
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeAppend:
		return "append"
	case ModeForce:
		return "force"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Write stores content at path according to mode.
func Write(path, content string, mode Mode) (Outcome, error) {
	existing, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Outcome{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var out Outcome
	switch mode {
	case ModeCreate:
		if exists {
			return Outcome{}, fmt.Errorf("%s: %w", path, ErrExists)
		}
	case ModeAppend:
		if exists {
			var merged string
			merged, out.Skipped = AppendSections(string(existing), content)
			if merged == string(existing) {
				out.Unchanged = true
				return out, nil
			}
			content = merged
		}
	case ModeForce:
	default:
		return Outcome{}, fmt.Errorf("unknown write mode %s", mode)
	}

	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return Outcome{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if !exists {
		if err := os.Chmod(path, newFilePerm); err != nil {
			return Outcome{}, fmt.Errorf("setting permissions on %s: %w", path, err)
		}
	}
	return out, nil
}

// AppendSections appends addition to existing. Fenced sections of addition
// already present in existing are dropped and reported in skipped. When
// every fenced section of addition is already present, existing is returned
// unchanged. Blank runs in the result collapse to one and the result ends
// with a single newline.
func AppendSections(existing, addition string) (merged string, skipped []string) {
	if strings.TrimSpace(existing) == "" {
		return addition, nil
	}

	present := make(map[string]bool)
	for _, line := range merge.SplitLines(existing) {
		if name, open, ok := merge.ParseFence(line); ok && open {
			present[name] = true
		}
	}

	var (
		kept       []string
		sections   int
		appended   int
		skipUntil  string
		inSkipping bool
	)
	for _, line := range merge.SplitLines(addition) {
		name, open, isFence := merge.ParseFence(line)
		if inSkipping {
			if isFence && !open && name == skipUntil {
				inSkipping = false
			}
			continue
		}
		if isFence && open {
			sections++
			if present[name] {
				skipped = append(skipped, name)
				skipUntil, inSkipping = name, true
				continue
			}
			appended++
		}
		kept = append(kept, line)
	}

	if sections > 0 && appended == 0 {
		return existing, skipped
	}

	lines := append(merge.SplitLines(existing), "")
	lines = append(lines, kept...)
	return render(collapseBlanks(lines)), skipped
}

func collapseBlanks(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && (len(out) == 0 || strings.TrimSpace(out[len(out)-1]) == "") {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

func render(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
