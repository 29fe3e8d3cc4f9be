package main

import (
	"os"

	"github.com/Seljaki2/bingo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
