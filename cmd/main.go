package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	runner := NewRunner(RunnerOpts{})
	app := newApp(runner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.Run(ctx, os.Args)
	stop()

	if err != nil {
		runner.logger.Fatalf("application error: %v", err)
	}
}
