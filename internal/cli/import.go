package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"furniture-catalog/internal/enrich"
)

func newImportCmd(with withApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import items from outside sources",
	}
	cmd.AddCommand(newImportBookmarksCmd(with))
	return cmd
}

func newImportBookmarksCmd(with withApp) *cobra.Command {
	var (
		folder      string
		fetchImages bool
	)
	cmd := &cobra.Command{
		Use:   "bookmarks FILE",
		Short: "Add every link of a browser bookmark export as an item",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, args []string, a *app) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open bookmarks: %w", err)
			}
			defer f.Close()

			bms, err := enrich.ParseBookmarks(f)
			if err != nil {
				return fmt.Errorf("parse bookmarks: %w", err)
			}
			bms = enrich.FilterByFolder(bms, folder)
			out := cmd.OutOrStdout()
			if len(bms) == 0 {
				fmt.Fprintln(out, "No bookmarks found.")
				return nil
			}

			var fetcher *enrich.ImageFetcher
			if fetchImages {
				fetcher = enrich.NewImageFetcher(a.cfg.Enrich.FetchTimeout)
			}
			candidates := enrich.ImportCandidates(cmd.Context(), bms, fetcher, a.cfg.Enrich.Concurrency, a.log)

			n, err := a.engine.ImportItems(cmd.Context(), candidates)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %d of %d bookmarks.\n", n, len(bms))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Only import bookmarks whose folder contains this text")
	cmd.Flags().BoolVar(&fetchImages, "fetch-images", false, "Look up a product image for each bookmark")
	return cmd
}
