// Command forge scaffolds backend projects from templates.
package main

import (
	"os"

	"github.com/conneroisu/forge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
