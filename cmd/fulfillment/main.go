// Command fulfillment serves the Carbonator checkout verification and Stripe
// webhook endpoints, and carries a few operator subcommands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is the service build version, set with -ldflags at release time.
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "carbonator-fulfillment",
		Short:         "Checkout verification and download-link delivery for Carbonator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(previewEmailCmd())
	rootCmd.AddCommand(releaseCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns JSON logs in production, pretty text in development.
func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
