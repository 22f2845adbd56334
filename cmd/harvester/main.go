// Package main provides the harvester command: it queries the Wayback Machine
// CDX index for captures of a domain pattern and stores the seller ids found.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"waybackseller/cmd/harvester/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
