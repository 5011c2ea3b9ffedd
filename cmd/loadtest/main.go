package main

import (
	"os"

	"immofox-http-service/cmd/loadtest/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
