// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// An ActionableError says what gi was doing, which resource was involved and
// what the user can try next. Errors can point at an Issue, a Markdown guide
// rendered with glamour when the CLI reports a fatal failure.
package issue
