package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"cpubars/internal/agent"
	"cpubars/internal/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "cpubars: %v\n", err)
		os.Exit(2)
	}

	logger := agent.BuildLogger(cfg, os.Stderr)
	a, err := agent.New(cfg, logger)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		logger.Error("measurement failed", "error", err)
		os.Exit(1)
	}
}
