package main

import (
	"fmt"

	"safetyhub/domain/analytics"
	"safetyhub/internal/migration"
	"safetyhub/internal/testkit"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the document store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %s applied to %s store\n",
				migration.NewRunner().Version(), c.Config.Database.Driver)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	cfg := testkit.DefaultSafetyConfig()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the document store with synthetic safety data",
		Long: `Generate deterministic incidents, inspections, trainings and near-miss reports
and write them to their collections, replacing documents with the same ids.

Example: safetyhub seed --months 24 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			data := testkit.NewSafetyDataGenerator(cfg).Generate()
			for _, name := range analytics.AllCollections() {
				tbl, ok := data[name]
				if !ok {
					continue
				}
				if _, err := c.Store.Clear(cmd.Context(), name); err != nil {
					return err
				}
				n, err := c.Store.BulkUpsert(cmd.Context(), name, tbl)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %-20s %d records\n", name, n)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Months, "months", cfg.Months, "Months of history to generate")
	cmd.Flags().IntVar(&cfg.IncidentsPerMonth, "incidents-per-month", cfg.IncidentsPerMonth, "Average incidents per month")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic generation")
	return cmd
}
