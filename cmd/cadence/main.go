package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/adapter/cli/habit"
	"github.com/felixgeelhaar/cadence/adapter/cli/mcp"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.AddCommand(habit.Commands()...)
	cli.AddCommand(mcp.Cmd, cli.HealthCmd, cli.VersionCmd)

	cli.Execute(ctx)
}
