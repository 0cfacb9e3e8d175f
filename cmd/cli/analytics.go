package main

import (
	"errors"
	"fmt"
	"io"

	"safetyhub/domain/analytics"
	"safetyhub/ports"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Run or show the safety analytics report",
	}
	cmd.AddCommand(newAnalyticsRunCmd(), newAnalyticsShowCmd())
	return cmd
}

func newAnalyticsRunCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute the analytics from the document store and cache the report",
		Long: `Fetch every safety collection from the document store, run correlation,
root cause, forecasting, risk, compliance and benchmarking analysis, and
cache the report for the dashboard.

Example: safetyhub analytics run --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			report, err := c.Analytics.Run(cmd.Context())
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), c.Reports, report, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown|html|json")
	return cmd
}

func newAnalyticsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cached analytics report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}

			report, err := c.Cache.Load(cmd.Context())
			if err != nil && !errors.Is(err, ports.ErrCacheMiss) {
				return err
			}
			return printReport(cmd.OutOrStdout(), c.Reports, report, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown|html|json")
	return cmd
}

func printReport(w io.Writer, renderer ports.ReportRenderer, report *analytics.Report, format string) error {
	switch format {
	case "markdown", "md":
		_, err := w.Write(renderer.Markdown(report))
		return err
	case "html":
		_, err := w.Write(renderer.HTML(report))
		return err
	case "json":
		return writeJSON(w, "", report)
	default:
		return fmt.Errorf("unknown format %q (want markdown, html or json)", format)
	}
}
