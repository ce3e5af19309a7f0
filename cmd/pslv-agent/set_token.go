package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/config"
	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
)

// runSetToken handles the "set-token" subcommand.
// It stores the list service token in secrets.json so the agent does not
// need PSLV_LIST_SERVICE_TOKEN in its environment on every start.
//
// Usage:
//
//	pslv-agent set-token <token>
func runSetToken(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pslv-agent set-token <token>")
		return 1
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg := config.LoadWithLogger(logger)

	if err := cfg.Secrets.SetListServiceToken(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to store token: %v\n", err)
		return 1
	}
	fmt.Printf("Stored list service token at %s\n", cfg.Secrets.Path())

	// Verify the token against the list service when one is configured.
	if cfg.ListServiceURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client := listsvc.NewClient(cfg.ListServiceURL, args[0])
		if err := client.Ping(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: token stored, but the list service did not accept it: %v\n", err)
			return 0
		}
		fmt.Println("List service accepted the token.")
	}
	return 0
}
