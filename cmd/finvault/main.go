package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jask/finvault/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "finvault:", err)
		stop()
		os.Exit(1)
	}
}
