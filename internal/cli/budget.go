package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"furniture-catalog/internal/domain"
)

func newBudgetCmd(with withApp) *cobra.Command {
	var (
		room    string
		details bool
	)
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show the budget summary and per-room totals",
		RunE: with(func(cmd *cobra.Command, _ []string, a *app) error {
			snap, err := a.engine.Budget(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if snap.TotalItemCount == 0 {
				fmt.Fprintln(out, "\n  No items on the list yet.")
				return nil
			}

			if room != "" {
				b, ok := findRoom(snap, room)
				if !ok {
					return fmt.Errorf("no room named %q", room)
				}
				fmt.Fprintln(out, RenderRoomItems(b))
				return nil
			}

			fmt.Fprintln(out, RenderTitle("FURNITURE BUDGET"))
			fmt.Fprintln(out, RenderSummary(snap))
			fmt.Fprintln(out, RenderRooms(snap))
			if details {
				for _, b := range snap.ByRoom {
					fmt.Fprintln(out, RenderRoomItems(b))
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&room, "room", "r", "", "Show only the items of this room")
	cmd.Flags().BoolVar(&details, "details", false, "List the items of every room")
	return cmd
}

func findRoom(snap *domain.BudgetSnapshot, name string) (domain.RoomBucket, bool) {
	if b, ok := snap.Room(name); ok {
		return b, true
	}
	for _, b := range snap.ByRoom {
		if strings.EqualFold(b.RoomName, name) {
			return b, true
		}
	}
	return domain.RoomBucket{}, false
}

func newRoomsCmd(with withApp) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List rooms ordered by total cost",
		RunE: with(func(cmd *cobra.Command, _ []string, a *app) error {
			snap, err := a.engine.Budget(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderRooms(snap))
			return nil
		}),
	}
}
