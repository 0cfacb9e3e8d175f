package main

import (
	"fmt"
	"io"

	"safetyhub/adapters/excel"
	"safetyhub/ports"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Import every sheet of a workbook or CSV file into the document store",
		Long: `Read every sheet of an .xlsx, .xlsm or .csv file, map each sheet name to a
collection and replace that collection's documents with the sheet's rows.

With --watch the file is re-imported each time it is saved, until interrupted.

Example: safetyhub ingest "Safety Register.xlsx" --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			out := cmd.OutOrStdout()
			result, err := c.Ingester.IngestFile(cmd.Context(), args[0])
			printIngest(out, result, err)
			if err != nil && !watch {
				return err
			}
			if !watch {
				return nil
			}

			return c.Ingester.Watch(cmd.Context(), args[0], excel.DefaultWatchDebounce, func(r *ports.IngestResult, err error) {
				printIngest(out, r, err)
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-import the file whenever it changes")
	return cmd
}

func printIngest(w io.Writer, result *ports.IngestResult, err error) {
	if err != nil {
		fmt.Fprintf(w, "Import failed: %v\n", err)
	}
	if result == nil {
		return
	}
	fmt.Fprintf(w, "Imported %s\n", result.File)
	for _, s := range result.Sheets {
		if s.Error != "" {
			fmt.Fprintf(w, "  %-30s -> %-25s FAILED: %s\n", s.Sheet, s.Collection, s.Error)
			continue
		}
		fmt.Fprintf(w, "  %-30s -> %-25s %d records\n", s.Sheet, s.Collection, s.Records)
	}
}
