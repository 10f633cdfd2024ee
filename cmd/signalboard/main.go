package main

import (
	"os"

	"github.com/wonny/signalboard/cmd/signalboard/commands"
)

// main is the entry point for the Signalboard CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/signalboard [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
