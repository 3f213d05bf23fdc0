// SPDX-License-Identifier: MPL-2.0

// Package merge combines gitignore templates into a single document.
//
// Combine is a pure function: the same sources and options always produce
// the same document. Rule lines are deduplicated across the whole document
// with the first occurrence winning; comments and blank lines are kept in
// place, and runs of blank lines collapse to one.
package merge
