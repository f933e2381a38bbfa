package main

import (
	"fmt"
	"os"

	"clockedin/internal/cli"
	"clockedin/internal/config"
	"clockedin/internal/logging"
)

func main() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{
		Debug:   cfg.Application.Debug,
		Verbose: cfg.Application.Verbose,
		LogDir:  cfg.Application.LogDir,
	}); err != nil {
		// logging is best effort; the helpers are no-ops without a logger
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	root := cli.NewRootCommand(cfg, NewBackendFactory(config.GetEnvironment()).Open)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
