package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"furniture-catalog/internal/domain"
)

// ComputeBudget aggregates items into a snapshot stamped with generatedAt.
// It is pure: the same items always produce the same aggregate.
func ComputeBudget(items []domain.FurnitureItem, generatedAt time.Time) domain.BudgetSnapshot {
	snap := domain.BudgetSnapshot{
		TotalCost:      decimal.Zero,
		AveragePerItem: decimal.Zero,
		ByRoom:         []domain.RoomBucket{},
		GeneratedAt:    generatedAt,
	}

	buckets := make(map[string]int)
	roomNumbers := make(map[int]struct{})

	for _, it := range items {
		line := NewLineItem(it)
		key := it.RoomKey()

		idx, ok := buckets[key]
		if !ok {
			idx = len(snap.ByRoom)
			buckets[key] = idx
			snap.ByRoom = append(snap.ByRoom, domain.RoomBucket{
				RoomName:  key,
				TotalCost: decimal.Zero,
				Items:     []domain.LineItem{},
			})
		}
		b := &snap.ByRoom[idx]
		b.Items = append(b.Items, line)
		b.ItemCount += line.Quantity
		b.TotalCost = b.TotalCost.Add(line.LineTotal)

		snap.TotalItemCount += line.Quantity
		snap.TotalCost = snap.TotalCost.Add(line.LineTotal)

		if it.RoomNumber != nil && *it.RoomNumber > 0 {
			roomNumbers[*it.RoomNumber] = struct{}{}
		}
	}

	if snap.TotalItemCount > 0 {
		snap.AveragePerItem = snap.TotalCost.Div(decimal.NewFromInt(int64(snap.TotalItemCount)))
	}
	snap.RoomsUsed = len(roomNumbers)

	// Stable so equal totals keep first-encountered order.
	sort.SliceStable(snap.ByRoom, func(i, j int) bool {
		return snap.ByRoom[i].TotalCost.GreaterThan(snap.ByRoom[j].TotalCost)
	})
	return snap
}
