package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AI2HU/dbconsole/internal/app"
	"github.com/AI2HU/dbconsole/internal/cli"
	"github.com/AI2HU/dbconsole/internal/commands"
	"github.com/AI2HU/dbconsole/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(app.New())

	if err := dispatcher.Register(cli.Builtins()...); err != nil {
		logger.Fatal("%v", err)
	}
	if err := dispatcher.Register(commands.Users()...); err != nil {
		logger.Fatal("%v", err)
	}

	code := dispatcher.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
