// SPDX-License-Identifier: MPL-2.0

// Package catalog models the set of available gitignore templates and
// provides a single-attempt HTTP client for the GitHub contents API that
// lists them and downloads their bodies.
//
// The package is organized into three concerns:
//   - catalog.go: Entry and Catalog types with lookup and search helpers
//   - errors.go: NetworkError, ParseError and the ErrNotFound sentinel
//   - client.go: Client that fetches the catalog and individual templates
package catalog
