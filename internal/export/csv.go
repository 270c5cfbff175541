// Package export renders a budget snapshot for spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
)

// Header is the first row of every export.
var Header = []string{
	"Item Name", "Store", "URL", "Price", "Quantity",
	"Room", "Room #", "Subtotal", "Category", "Notes",
}

// Rows projects snap into the header row, one row per line item in room
// order, and a closing TOTAL row.
func Rows(snap *domain.BudgetSnapshot) [][]string {
	rows := [][]string{Header}
	for _, bucket := range snap.ByRoom {
		for _, li := range bucket.Items {
			roomNumber := ""
			if li.Item.RoomNumber != nil {
				roomNumber = strconv.Itoa(*li.Item.RoomNumber)
			}
			rows = append(rows, []string{
				li.Item.Title,
				li.Item.Store,
				li.Item.URL,
				li.Item.Price,
				strconv.Itoa(li.Quantity),
				bucket.RoomName,
				roomNumber,
				budget.FormatMoney(li.LineTotal),
				li.Item.Category,
				li.Item.Notes,
			})
		}
	}
	rows = append(rows, []string{
		"", "", "", "TOTAL", strconv.Itoa(snap.TotalItemCount),
		"", "", budget.FormatMoney(snap.TotalCost), "", "",
	})
	return rows
}

// WriteCSV writes the export of snap to w.
func WriteCSV(w io.Writer, snap *domain.BudgetSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(snap)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// FileName is the suggested download name for an export taken at snap.GeneratedAt.
func FileName(snap *domain.BudgetSnapshot) string {
	return "furniture-budget-" + snap.GeneratedAt.Format("2006-01-02") + ".csv"
}
