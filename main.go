package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ardnew/tempita/cli"
	"github.com/ardnew/tempita/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("run failed", log.Err(err))
		os.Exit(1)
	}
}
