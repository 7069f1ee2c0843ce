package main

import (
	"os"

	"github.com/soocke/deskdup/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
