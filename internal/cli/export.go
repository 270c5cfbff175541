package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"furniture-catalog/internal/export"
)

func newExportCmd(with withApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the budget",
	}
	cmd.AddCommand(newExportCSVCmd(with))
	return cmd
}

func newExportCSVCmd(with withApp) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the budget as CSV to stdout or --out",
		RunE: with(func(cmd *cobra.Command, _ []string, a *app) error {
			snap, err := a.engine.Budget(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" {
				return export.WriteCSV(cmd.OutOrStdout(), snap)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			w := bufio.NewWriter(f)
			if err := export.WriteCSV(w, snap); err != nil {
				f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d items to %s\n", snap.TotalItemCount, outPath)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
