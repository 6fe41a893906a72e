// Command spendctl checks and inspects the dashboard data from the shell.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spendboard/cmd/spendctl/commands"
	"spendboard/internal/cli"
	"spendboard/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	c := commands.New(config.Load(), logger)
	if err := c.Execute(ctx); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
