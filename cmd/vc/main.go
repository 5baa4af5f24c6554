package main

import (
	"os"

	"github.com/cwbudde/vc/cmd/vc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
