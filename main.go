// Package main is the entry point for the Argus threat intelligence console.
package main

import (
	"context"
	"fmt"
	"os"

	"argus/bootstrap"
	"argus/cmd"
)

// run initializes and starts the console backend.
func run() error {
	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	app.WaitForShutdown()
	app.Shutdown()

	return nil
}

// main dispatches to CLI commands or runs the server.
func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "analyze":
			os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
			if err := cmd.NewAnalyzeCmd().Execute(); err != nil {
				os.Exit(1)
			}
			return
		case "rules":
			os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
			if err := cmd.NewRulesCmd().Execute(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}
