// Package main is the entry point for ticket-watcher.
package main

import (
	"os"

	"github.com/donaldgifford/ticket-watcher/cmd/ticket-watcher/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
