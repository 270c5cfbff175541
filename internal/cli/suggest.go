package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/enrich"
)

func newSuggestPricesCmd(with withApp) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "suggest-prices",
		Short: "Fill empty prices with typical prices for the item type",
		RunE: with(func(cmd *cobra.Command, _ []string, a *app) error {
			suggester := enrich.DefaultPriceSuggester()
			out := cmd.OutOrStdout()

			if dryRun {
				items, err := a.engine.ListItems(cmd.Context(), domain.ItemFilter{})
				if err != nil {
					return err
				}
				var (
					matched []domain.FurnitureItem
					sugs    []enrich.Suggestion
				)
				for _, it := range items {
					if strings.TrimSpace(it.Price) != "" {
						continue
					}
					if s, ok := suggester.Suggest(it.Title, it.URL); ok {
						matched = append(matched, it)
						sugs = append(sugs, s)
					}
				}
				if len(sugs) == 0 {
					fmt.Fprintln(out, "No items need a suggested price.")
					return nil
				}
				fmt.Fprintln(out, RenderSuggestions(matched, sugs))
				fmt.Fprintln(out, mutedStyle.Render("Dry run: nothing was saved."))
				return nil
			}

			snap, n, err := a.engine.EnrichItems(cmd.Context(), suggester.Enricher())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Suggested prices for %d items. New total: %s\n", n, budget.FormatMoney(snap.TotalCost))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show suggestions without saving them")
	return cmd
}
