// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/gi-cli/gi/internal/issue"
)

// AliasFilePath returns the alias file to read: AliasFile when set,
// otherwise aliases.jsonc in configDir. The boolean is false when the
// default file does not exist.
func (c *Config) AliasFilePath(configDir string) (string, bool) {
	if c.AliasFile != "" {
		return c.AliasFile, true
	}
	if configDir == "" {
		return "", false
	}
	p := filepath.Join(configDir, AliasFileName)
	return p, fileExists(p)
}

// LoadAliasFile reads a JSON object of alias to template name. Comments and
// trailing commas are accepted. Keys are lower-cased.
func LoadAliasFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read alias file").
			WithResource(path).
			WithIssue(issue.AliasFileInvalidId).
			Wrap(err).
			BuildError()
	}
	if err := checkFileSize(data, path); err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse alias file").
			WithResource(path).
			WithSuggestion("The file must be a JSON object of string values").
			WithIssue(issue.AliasFileInvalidId).
			Wrap(err).
			BuildError()
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		k, v = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)
		if k == "" || v == "" {
			return nil, issue.NewErrorContext().
				WithOperation("parse alias file").
				WithResource(path).
				WithIssue(issue.AliasFileInvalidId).
				Wrap(fmt.Errorf("empty alias or target in entry %q", k)).
				BuildError()
		}
		out[k] = v
	}
	return out, nil
}

// UserAliases returns the alias file entries layered under the inline
// aliases from the config file, which win on conflict.
func (c *Config) UserAliases(configDir string) (map[string]string, error) {
	out := make(map[string]string)
	if path, ok := c.AliasFilePath(configDir); ok {
		fromFile, err := LoadAliasFile(path)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, fromFile)
	}
	for k, v := range c.Aliases {
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
