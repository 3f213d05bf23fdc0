// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gi-cli/gi/internal/cache"
	"github.com/gi-cli/gi/internal/catalog"
)

const (
	// OriginNetwork marks content downloaded during this invocation.
	OriginNetwork Origin = "network"
	// OriginCache marks content read from the local cache.
	OriginCache Origin = "cache"
)

var (
	// ErrUnresolved is matched by results whose input has no catalog match.
	ErrUnresolved = errors.New("unresolved template name")

	// ErrCatalogUnavailable is returned when neither the network nor the
	// cache can provide a catalog. Nothing can be resolved in that case.
	ErrCatalogUnavailable = errors.New("template catalog unavailable")

	// ErrOffline is the cause reported when offline mode prevents a download.
	ErrOffline = errors.New("offline mode")
)

type (
	// Origin says where a result's content came from.
	Origin string

	// Request is one user-supplied identifier and its resolution.
	Request struct {
		RawInput  string
		Canonical string
		Resolved  bool
	}

	// Result is the outcome for one Request. Err == nil means the template
	// was fetched; otherwise Err is the failure reason and Content is nil.
	Result struct {
		Request Request
		Name    string
		Content []byte
		Origin  Origin
		// Stale is set when the content was served from cache after the
		// network could not refresh it, or in offline mode past its TTL.
		Stale bool
		Err   error
	}

	// CatalogInfo is the catalog used for a batch and where it came from.
	CatalogInfo struct {
		Catalog *catalog.Catalog
		Origin  Origin
		Stale   bool
	}

	// UnresolvedError reports an input with no catalog match. It matches
	// both ErrUnresolved and catalog.ErrNotFound.
	UnresolvedError struct {
		Input string
	}

	// CatalogUnavailableError wraps the reason the catalog could not be
	// loaded. It matches ErrCatalogUnavailable.
	CatalogUnavailableError struct {
		Err error
	}

	// Source is the remote side: a single-attempt catalog and template transport.
	Source interface {
		FetchCatalog(ctx context.Context) (*catalog.Catalog, error)
		FetchTemplate(ctx context.Context, locator string) ([]byte, error)
		Source() string
	}

	// Store is the durable side.
	Store interface {
		Get(name string) (cache.Record, bool)
		Put(name string, content []byte, locator string) error
		GetCatalog() (cache.CatalogRecord, bool)
		PutCatalog(c *catalog.Catalog, source string) error
		IsStale(fetchedAt time.Time, ttl time.Duration) bool
	}
)

// OK reports whether the template was fetched.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("no template matches %q", e.Input)
}

// Unwrap returns ErrUnresolved and catalog.ErrNotFound.
func (e *UnresolvedError) Unwrap() []error {
	return []error{ErrUnresolved, catalog.ErrNotFound}
}

// Error implements the error interface.
func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCatalogUnavailable, e.Err)
}

// Unwrap returns ErrCatalogUnavailable and the underlying cause.
func (e *CatalogUnavailableError) Unwrap() []error {
	return []error{ErrCatalogUnavailable, e.Err}
}

// Succeeded returns the fetched results, keeping the first result per
// canonical name and preserving order. This is the input order the merge
// step expects.
func Succeeded(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	var out []Result
	for _, r := range results {
		if !r.OK() || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}

// Failed returns the failed results in order.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
