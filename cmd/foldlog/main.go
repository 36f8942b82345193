// Command foldlog lists, prints and browses foldlog session files.
package main

import (
	"os"

	"github.com/Iron-Ham/foldlog/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
