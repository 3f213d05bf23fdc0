// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gi-cli/gi/internal/config"
)

var errInvalidSource = errors.New("invalid template source")

// repoRef identifies a template repository on GitHub.
type repoRef struct {
	Owner string
	Repo  string
	Ref   string
}

// parseSource parses a --from value. Accepted forms:
//
//	owner/repo
//	owner/repo@ref
//	https://github.com/owner/repo
//	https://github.com/owner/repo/tree/ref
func parseSource(raw string) (repoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return repoRef{}, fmt.Errorf("%w: empty value", errInvalidSource)
	}

	if strings.Contains(raw, "://") {
		return parseSourceURL(raw)
	}

	var ref string
	if before, after, ok := strings.Cut(raw, "@"); ok {
		raw, ref = before, after
		if ref == "" {
			return repoRef{}, fmt.Errorf("%w: empty ref in %q", errInvalidSource, raw+"@")
		}
	}
	owner, repo, ok := strings.Cut(raw, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return repoRef{}, fmt.Errorf("%w: %q is not owner/repo", errInvalidSource, raw)
	}
	return repoRef{Owner: owner, Repo: strings.TrimSuffix(repo, ".git"), Ref: ref}, nil
}

func parseSourceURL(raw string) (repoRef, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return repoRef{}, fmt.Errorf("%w: %w", errInvalidSource, err)
	}
	if !strings.EqualFold(u.Host, "github.com") && !strings.EqualFold(u.Host, "www.github.com") {
		return repoRef{}, fmt.Errorf("%w: only github.com repositories are supported, got %q", errInvalidSource, u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return repoRef{}, fmt.Errorf("%w: %q has no owner/repo path", errInvalidSource, raw)
	}
	r := repoRef{Owner: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}
	if len(parts) >= 4 && parts[2] == "tree" {
		r.Ref = strings.Join(parts[3:], "/")
	}
	return r, nil
}

// apply overrides the repository fields of src.
func (r repoRef) apply(src config.SourceConfig) config.SourceConfig {
	src.Owner = r.Owner
	src.Repo = r.Repo
	src.Ref = r.Ref
	return src
}

// sourceCacheDir returns the cache directory used for a --from repository.
func sourceCacheDir(base string, r repoRef) string {
	ref := r.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return filepath.Join(base, "sources", r.Owner, r.Repo, strings.ReplaceAll(ref, "/", "_"))
}
