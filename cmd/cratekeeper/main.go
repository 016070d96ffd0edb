package main

import (
	"os"

	"github.com/solatis/cratekeeper/cmd/cratekeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
