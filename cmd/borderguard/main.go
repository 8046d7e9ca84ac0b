package main

import (
	"os"

	"github.com/tkingovr/borderguard/cmd/borderguard/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
