package main

import (
	"os"

	"github.com/bnema/worker-fleet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
