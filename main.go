// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command denypurge deletes every deny rule from the host's ipfw firewall.
package main

import (
	"os"

	"grimm.is/denypurge/cmd"
)

func main() {
	// cobra has already printed the error.
	if err := cmd.NewRootCommand(cmd.NewRunner()).Execute(); err != nil {
		os.Exit(1)
	}
}
