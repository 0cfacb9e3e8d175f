package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"safetyhub/internal/config"
	"safetyhub/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "safetyhub",
		Short: "Safety hub CLI for data processing, model training and safety analytics",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using system environment variables")
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newAnalyticsCmd(),
		newIngestCmd(),
		newProcessCmd(),
		newTrainCmd(),
		newCompareCmd(),
		newPredictCmd(),
		newMigrateCmd(),
		newSeedCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openContainer loads the configuration and connects the document store.
// The caller must call Shutdown.
func openContainer(ctx context.Context) (*container.Container, error) {
	c, err := newContainer()
	if err != nil {
		return nil, err
	}
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// newContainer builds a container without touching the document store.
func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return container.New(cfg)
}
