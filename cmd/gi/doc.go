// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the gi command line interface.
//
// The root command resolves template names, fetches them through the cache
// and writes the combined .gitignore. Subcommands browse the catalog
// (list, search, show), inspect and clear the cache (doctor, cache clean)
// and manage the configuration file (config show, init, path).
package cmd
