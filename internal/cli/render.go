package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/enrich"
)

// Palette
var (
	colorBorder = lipgloss.Color("#403E3C")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#878580")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	moneyStyle  = lipgloss.NewStyle().Foreground(colorGreen).Padding(0, 1).Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
)

// RenderTitle renders a title in a rounded box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(56).
		Align(lipgloss.Center).
		Render(titleStyle.Render(title))
}

// newTable returns a table whose columns listed in moneyCols are right-aligned.
func newTable(headers []string, moneyCols ...int) *table.Table {
	money := make(map[int]bool, len(moneyCols))
	for _, c := range moneyCols {
		money[c] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case money[col]:
				return moneyStyle
			default:
				return cellStyle
			}
		})
}

// RenderSummary shows the headline numbers of a snapshot.
func RenderSummary(snap *domain.BudgetSnapshot) string {
	rows := [][]string{
		{"Total cost", budget.FormatMoney(snap.TotalCost)},
		{"Items", strconv.Itoa(snap.TotalItemCount)},
		{"Average per item", budget.FormatMoney(snap.AveragePerItem)},
		{"Rooms", strconv.Itoa(len(snap.ByRoom))},
		{"Room numbers used", strconv.Itoa(snap.RoomsUsed)},
	}
	return newTable([]string{"Budget", ""}, 1).Rows(rows...).String()
}

// RenderRooms lists room totals with each room's share of the budget.
func RenderRooms(snap *domain.BudgetSnapshot) string {
	rows := make([][]string, 0, len(snap.ByRoom))
	for _, b := range snap.ByRoom {
		rows = append(rows, []string{
			b.RoomName,
			strconv.Itoa(b.ItemCount),
			budget.FormatMoney(b.TotalCost),
			shareBar(b.TotalCost, snap.TotalCost, 20),
		})
	}
	return newTable([]string{"Room", "Items", "Total", "Share"}, 2).Rows(rows...).String()
}

// RenderRoomItems lists the line items of one bucket.
func RenderRoomItems(b domain.RoomBucket) string {
	rows := make([][]string, 0, len(b.Items))
	for _, li := range b.Items {
		title := truncate(li.Item.Title, 36)
		if li.Item.PriceAutoSuggested {
			title += warnStyle.Render(" *")
		}
		rows = append(rows, []string{
			title,
			li.Item.Store,
			budget.FormatMoney(li.UnitPrice),
			strconv.Itoa(li.Quantity),
			budget.FormatMoney(li.LineTotal),
		})
	}
	heading := fmt.Sprintf("%s  %s", b.RoomName, mutedStyle.Render(budget.FormatMoney(b.TotalCost)))
	t := newTable([]string{"Item", "Store", "Price", "Qty", "Subtotal"}, 2, 4).Rows(rows...)
	return heading + "\n" + t.String()
}

// RenderSuggestions lists dry-run price guesses.
func RenderSuggestions(items []domain.FurnitureItem, sugs []enrich.Suggestion) string {
	rows := make([][]string, 0, len(sugs))
	for i, s := range sugs {
		rows = append(rows, []string{
			truncate(items[i].Title, 36),
			s.Keyword,
			fmt.Sprintf("$%d-$%d", s.Range.Min, s.Range.Max),
			s.Multiplier.StringFixed(1) + "x",
			s.Price(),
		})
	}
	return newTable([]string{"Item", "Matched", "Range", "Store", "Suggested"}, 4).Rows(rows...).String()
}

func shareBar(part, total decimal.Decimal, width int) string {
	if !total.IsPositive() {
		return strings.Repeat("░", width) + "   0%"
	}
	// Negative room totals are valid data; the bar only shows the 0..100% share.
	pct := min(max(part.Div(total).InexactFloat64(), 0), 1)
	filled := min(max(int(pct*float64(width)+0.5), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %3.0f%%", pct*100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
