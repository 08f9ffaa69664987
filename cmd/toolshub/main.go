// toolshub - everyday office tools
//
// toolshub extracts dominant colours from images, removes duplicate lines
// from text, calculates zakat and serves the Office Tools Hub website.
package main

import (
	"os"

	"github.com/jmylchreest/toolshub/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
