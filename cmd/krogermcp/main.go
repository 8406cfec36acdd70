package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"localhost/kroger-mcp/cmd/krogermcp/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
