package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"f0oster/adspyview/logging"
	"f0oster/adspyview/viewer"

	"github.com/apex/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	logging.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args
	if len(args) <= 1 {
		args = append(args, "--help")
	}

	if err := viewer.NewCommand(os.Stdout).Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("run failed: %+v", err)
		return 1
	}
	return 0
}
