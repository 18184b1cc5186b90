package main

import (
	"os"

	"github.com/solatis/costrules/cmd/costrules/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
