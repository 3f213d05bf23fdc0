// SPDX-License-Identifier: MPL-2.0

// Package config handles gi configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/gi/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/gi/config.cue on macOS,
// %APPDATA%\gi\config.cue on Windows). Environment variables prefixed with GI_
// override file values (GI_CACHE_TTL, GI_SOURCE_REPO, ...), and GITHUB_TOKEN
// is honored for API authentication.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before
// being merged into Viper. User aliases may also live in aliases.jsonc next to
// the config file.
package config
