// SPDX-License-Identifier: MPL-2.0

// Package detect guesses which templates fit the current machine and
// project when the user names none.
package detect

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
)

type (
	// Detector inspects the operating system, a project directory and the
	// executables on PATH.
	Detector struct {
		goos      string
		dir       string
		lookPath  func(string) (string, error)
		pathTools bool
	}

	// Option configures a Detector.
	Option func(*Detector)

	marker struct {
		pattern  string
		template string
	}

	tool struct {
		names    []string
		template string
	}
)

// Project files and the template each one implies, in reporting order.
var projectMarkers = []marker{
	{"go.mod", "Go"},
	{"package.json", "Node"},
	{"pyproject.toml", "Python"},
	{"requirements.txt", "Python"},
	{"setup.py", "Python"},
	{"Pipfile", "Python"},
	{"Cargo.toml", "Rust"},
	{"Gemfile", "Ruby"},
	{"composer.json", "Composer"},
	{"pom.xml", "Maven"},
	{"build.gradle", "Gradle"},
	{"build.gradle.kts", "Gradle"},
	{"mix.exs", "Elixir"},
	{"pubspec.yaml", "Dart"},
	{"CMakeLists.txt", "CMake"},
	{"*.tf", "Terraform"},
	{"*.csproj", "VisualStudio"},
	{"*.sln", "VisualStudio"},
}

var pathTools = []tool{
	{[]string{"python3", "python"}, "Python"},
	{[]string{"node"}, "Node"},
}

// WithGOOS overrides the operating system name (runtime.GOOS values).
func WithGOOS(goos string) Option {
	return func(d *Detector) {
		d.goos = goos
	}
}

// WithDir sets the project directory to scan.
func WithDir(dir string) Option {
	return func(d *Detector) {
		d.dir = dir
	}
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Detector) {
		d.lookPath = fn
	}
}

// WithPathTools toggles toolchain detection on PATH.
func WithPathTools(enabled bool) Option {
	return func(d *Detector) {
		d.pathTools = enabled
	}
}

// New returns a Detector for the current OS and working directory.
func New(opts ...Option) *Detector {
	d := &Detector{
		goos:      runtime.GOOS,
		dir:       ".",
		lookPath:  exec.LookPath,
		pathTools: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns template names: the OS template first, then project
// templates, then toolchains found on PATH. Duplicates are removed keeping
// the first occurrence.
func (d *Detector) Detect() []string {
	var out []string
	add := func(name string) {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	if name, ok := OSTemplate(d.goos); ok {
		add(name)
	}
	for _, m := range projectMarkers {
		if d.hasMarker(m.pattern) {
			add(m.template)
		}
	}
	if d.pathTools {
		for _, t := range pathTools {
			for _, name := range t.names {
				if _, err := d.lookPath(name); err == nil {
					add(t.template)
					break
				}
			}
		}
	}
	return out
}

// OSTemplate returns the template for a runtime.GOOS value.
func OSTemplate(goos string) (string, bool) {
	switch goos {
	case "windows":
		return "Global/Windows", true
	case "darwin":
		return "Global/macOS", true
	case "linux", "freebsd", "openbsd", "netbsd":
		return "Global/Linux", true
	default:
		return "", false
	}
}

func (d *Detector) hasMarker(pattern string) bool {
	p := filepath.Join(d.dir, pattern)
	if !containsMeta(pattern) {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	}
	matches, err := filepath.Glob(p)
	return err == nil && len(matches) > 0
}

func containsMeta(pattern string) bool {
	return slices.ContainsFunc([]rune(pattern), func(r rune) bool {
		return r == '*' || r == '?' || r == '['
	})
}
