package budget

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture-catalog/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeBudget_Empty(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := ComputeBudget(nil, at)

	assert.Equal(t, 0, snap.TotalItemCount)
	assert.True(t, snap.TotalCost.IsZero())
	assert.True(t, snap.AveragePerItem.IsZero())
	assert.Equal(t, 0, snap.RoomsUsed)
	assert.NotNil(t, snap.ByRoom)
	assert.Empty(t, snap.ByRoom)
	assert.Equal(t, at, snap.GeneratedAt)
}

func TestComputeBudget_LivingRoomScenario(t *testing.T) {
	items := []domain.FurnitureItem{
		{ID: "1", Price: "$1,200", Quantity: 1, Room: "Living Room"},
		{ID: "2", Price: "", Quantity: 2, Room: "Living Room"},
		{ID: "3", Price: "$300.50", Quantity: 1, Room: ""},
	}
	snap := ComputeBudget(items, time.Now())

	assert.Equal(t, 4, snap.TotalItemCount)
	assert.True(t, snap.TotalCost.Equal(dec("1500.50")), "total %s", snap.TotalCost)

	living, ok := snap.Room("Living Room")
	require.True(t, ok)
	assert.True(t, living.TotalCost.Equal(dec("1200")))
	assert.Equal(t, 3, living.ItemCount)
	assert.Len(t, living.Items, 2)

	unassigned, ok := snap.Room(domain.UnassignedRoom)
	require.True(t, ok)
	assert.True(t, unassigned.TotalCost.Equal(dec("300.50")))
	assert.Equal(t, 1, unassigned.ItemCount)

	assert.True(t, snap.AveragePerItem.Equal(dec("375.125")), "average %s", snap.AveragePerItem)
	assert.Equal(t, []string{"Living Room", domain.UnassignedRoom}, roomNames(snap))
}

func TestComputeBudget_ExponentPriceCountsAsZero(t *testing.T) {
	items := []domain.FurnitureItem{
		{ID: "1", Price: "$500", Quantity: 1, Room: "Living Room"},
		{ID: "2", Price: "1e-200000000", Quantity: 1, Room: "Living Room"},
	}

	done := make(chan domain.BudgetSnapshot, 1)
	go func() { done <- ComputeBudget(items, time.Now()) }()

	select {
	case snap := <-done:
		assert.True(t, snap.TotalCost.Equal(dec("500")), "total %s", snap.TotalCost)
		assert.Equal(t, 2, snap.TotalItemCount)
	case <-time.After(5 * time.Second):
		t.Fatal("ComputeBudget did not finish")
	}
}

func TestComputeBudget_RoomOrdering(t *testing.T) {
	items := []domain.FurnitureItem{
		{ID: "1", Price: "100", Room: "Office"},
		{ID: "2", Price: "500", Room: "Kitchen"},
		{ID: "3", Price: "100", Room: "Bath"},
		{ID: "4", Price: "250", Room: "Office"},
		{ID: "5", Price: "nope", Room: "Garage"},
		{ID: "6", Price: "100", Room: "Den"},
	}
	snap := ComputeBudget(items, time.Now())

	// Bath and Den tie at 100 and keep input order; Garage is worth nothing.
	assert.Equal(t, []string{"Kitchen", "Office", "Bath", "Den", "Garage"}, roomNames(snap))
	for i := 1; i < len(snap.ByRoom); i++ {
		assert.False(t, snap.ByRoom[i].TotalCost.GreaterThan(snap.ByRoom[i-1].TotalCost),
			"bucket %d out of order", i)
	}
}

func TestComputeBudget_RoomNamesAreExact(t *testing.T) {
	items := []domain.FurnitureItem{
		{ID: "1", Price: "1", Room: "bedroom"},
		{ID: "2", Price: "1", Room: "Bedroom"},
		{ID: "3", Price: "1", Room: "Bedroom "},
	}
	snap := ComputeBudget(items, time.Now())
	assert.Len(t, snap.ByRoom, 3)
}

func TestComputeBudget_RoomsUsed(t *testing.T) {
	items := []domain.FurnitureItem{
		{ID: "1", Room: "Bedroom", RoomNumber: ptr(1)},
		{ID: "2", Room: "Bedroom", RoomNumber: ptr(2)},
		{ID: "3", Room: "Office", RoomNumber: ptr(2)},
		{ID: "4", Room: "Office"},
		{ID: "5", RoomNumber: ptr(0)},
	}
	snap := ComputeBudget(items, time.Now())
	assert.Equal(t, 2, snap.RoomsUsed)
}

func TestComputeBudget_Invariants(t *testing.T) {
	rooms := []string{"", "Living Room", "Bedroom", "Office"}
	prices := []string{"$10", "", "N/A", "$1,000.25", "7.5", "$0.01"}

	for n := 0; n < 40; n++ {
		var items []domain.FurnitureItem
		for i := 0; i < n; i++ {
			items = append(items, domain.FurnitureItem{
				ID:       fmt.Sprintf("item-%d", i),
				Price:    prices[(i*7+n)%len(prices)],
				Quantity: (i*3 + n) % 4,
				Room:     rooms[(i+n)%len(rooms)],
			})
		}
		snap := ComputeBudget(items, time.Now())

		sum := decimal.Zero
		for _, it := range items {
			sum = sum.Add(LineTotal(it))
		}
		assert.True(t, snap.TotalCost.Equal(sum), "n=%d total", n)

		seen := map[string]int{}
		bucketCount := 0
		for _, b := range snap.ByRoom {
			bucketCount += b.ItemCount
			for _, li := range b.Items {
				seen[li.Item.ID]++
				assert.Equal(t, b.RoomName, li.Item.RoomKey())
			}
		}
		assert.Equal(t, snap.TotalItemCount, bucketCount, "n=%d count", n)
		assert.Len(t, seen, len(items))
		for id, c := range seen {
			assert.Equal(t, 1, c, "item %s in %d buckets", id, c)
		}
		for i := 1; i < len(snap.ByRoom); i++ {
			assert.False(t, snap.ByRoom[i].TotalCost.GreaterThan(snap.ByRoom[i-1].TotalCost))
		}
	}
}

func TestComputeBudget_Idempotent(t *testing.T) {
	items := []domain.FurnitureItem{
		{ID: "1", Price: "$1,200", Quantity: 1, Room: "Living Room", RoomNumber: ptr(1)},
		{ID: "2", Price: "$45.10", Quantity: 3, Room: "Kitchen"},
	}
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := ComputeBudget(items, at)
	second := ComputeBudget(items, at)
	assert.Equal(t, first, second)

	third := ComputeBudget(items, at.Add(time.Hour))
	third.GeneratedAt = at
	assert.Equal(t, first, third)
}

func TestComputeBudget_DoesNotAliasInput(t *testing.T) {
	items := []domain.FurnitureItem{{ID: "1", Price: "5", RoomNumber: ptr(3)}}
	snap := ComputeBudget(items, time.Now())

	*items[0].RoomNumber = 9
	items[0].Price = "500"
	li := snap.ByRoom[0].Items[0]
	assert.Equal(t, 3, *li.Item.RoomNumber)
	assert.Equal(t, "5", li.Item.Price)
}

func roomNames(s domain.BudgetSnapshot) []string {
	out := make([]string, 0, len(s.ByRoom))
	for _, b := range s.ByRoom {
		out = append(out, b.RoomName)
	}
	return out
}
