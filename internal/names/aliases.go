// SPDX-License-Identifier: MPL-2.0

package names

import (
	"maps"
	"strings"
)

// defaultAliases maps common shorthands (lower case) to canonical names in
// github/gitignore. Keys never equal the lower-cased form of a different
// canonical name, so case-insensitive resolution of a real name is never
// redirected by an alias.
var defaultAliases = map[string]string{
	"android":    "Android",
	"c#":         "VisualStudio",
	"c++":        "C++",
	"cpp":        "C++",
	"csharp":     "VisualStudio",
	"cxx":        "C++",
	"dotnet":     "VisualStudio",
	"eclipse":    "Global/Eclipse",
	"emacs":      "Global/Emacs",
	"golang":     "Go",
	"idea":       "Global/JetBrains",
	"intellij":   "Global/JetBrains",
	"jetbrains":  "Global/JetBrains",
	"js":         "Node",
	"javascript": "Node",
	"k8s":        "Global/Kubernetes",
	"linux":      "Global/Linux",
	"mac":        "Global/macOS",
	"macos":      "Global/macOS",
	"netbeans":   "Global/NetBeans",
	"node":       "Node",
	"nodejs":     "Node",
	"npm":        "Node",
	"osx":        "Global/macOS",
	"pwsh":       "PowerShell",
	"py":         "Python",
	"sublime":    "Global/SublimeText",
	"ts":         "Node",
	"typescript": "Node",
	"vim":        "Global/Vim",
	"vs":         "VisualStudio",
	"vscode":     "Global/VisualStudioCode",
	"windows":    "Global/Windows",
	"xcode":      "Global/Xcode",
	"yarn":       "Node",
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() map[string]string {
	return maps.Clone(defaultAliases)
}

// MergeAliases layers overrides on top of base and returns a new table with
// lower-cased keys. Later tables win. Entries with an empty key or target
// are skipped.
func MergeAliases(base map[string]string, overrides ...map[string]string) map[string]string {
	out := make(map[string]string, len(base))
	for _, table := range append([]map[string]string{base}, overrides...) {
		for k, v := range table {
			k = strings.ToLower(strings.TrimSpace(k))
			v = strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			out[k] = v
		}
	}
	return out
}
