package main

import (
	"os"

	"github.com/chararch/gobatch-sample/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
