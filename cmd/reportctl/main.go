// Command reportctl lists reports, runs exports against the asset backend
// and performs small operator tasks from the command line.
package main

import (
	"os"

	"assetdesk/cmd/reportctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
