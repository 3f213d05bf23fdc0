// SPDX-License-Identifier: MPL-2.0

// Package names turns user-supplied template identifiers into canonical
// catalog names using a static alias table and case-insensitive matching.
package names
