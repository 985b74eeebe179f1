package main

import (
	"os"

	"github.com/aussiebroadwan/tabauth/cmd/authctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
