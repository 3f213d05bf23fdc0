// SPDX-License-Identifier: MPL-2.0

// Package fetch resolves a batch of template identifiers and retrieves each
// template from the local cache or the network.
//
// The Engine owns the fallback policy: a fresh cache record is served
// without network access, a missing or stale one triggers a single network
// attempt, and when that attempt fails a cached copy of any age is served
// with a warning. The same policy applies to the catalog itself. One bad
// name never fails the batch; only an unusable catalog or cancellation does.
package fetch
