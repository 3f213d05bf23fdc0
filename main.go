// SPDX-License-Identifier: MPL-2.0

// Command gi combines .gitignore templates from github/gitignore.
package main

import cmd "github.com/gi-cli/gi/cmd/gi"

func main() {
	cmd.Execute()
}
