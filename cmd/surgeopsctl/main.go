package main

import (
	"os"

	"github.com/portstack/surgeops/cmd/surgeopsctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
