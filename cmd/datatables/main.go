// Package main is the entry point for the datatables CLI.
package main

import (
	"os"

	"github.com/satishbabariya/datatables-go/cmd/datatables/commands"
	"github.com/satishbabariya/datatables-go/internal/logging"
	"github.com/satishbabariya/datatables-go/internal/ui"
)

func main() {
	err := commands.NewRootCommand().Execute()
	logging.Close()
	if err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
