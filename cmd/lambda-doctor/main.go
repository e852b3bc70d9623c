package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/simonhull/lambda-doctor/internal/commands"
	"github.com/simonhull/lambda-doctor/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewApp()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := commands.ExitUsage
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
			if exitErr.Err != nil {
				output.Error(exitErr.Err.Error())
			}
		} else {
			output.Error(err.Error())
		}
		stop()
		os.Exit(code)
	}
}
