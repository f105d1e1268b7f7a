package main

import (
	"os"

	"github.com/user/opsboard/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
