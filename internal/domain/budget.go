package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is an item together with its derived monetary fields.
type LineItem struct {
	Item      FurnitureItem   `json:"item"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// RoomBucket groups the line items sharing one room name.
type RoomBucket struct {
	RoomName  string          `json:"roomName"`
	ItemCount int             `json:"itemCount"`
	TotalCost decimal.Decimal `json:"totalCost"`
	Items     []LineItem      `json:"items"`
}

// BudgetSnapshot is the full aggregate over a collection at GeneratedAt.
// ByRoom is ordered by TotalCost descending.
type BudgetSnapshot struct {
	TotalItemCount int             `json:"totalItemCount"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	AveragePerItem decimal.Decimal `json:"averagePerItem"`
	RoomsUsed      int             `json:"roomsUsed"`
	ByRoom         []RoomBucket    `json:"byRoom"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}

// Clone returns a deep copy of the snapshot.
func (s *BudgetSnapshot) Clone() *BudgetSnapshot {
	out := *s
	out.ByRoom = make([]RoomBucket, len(s.ByRoom))
	for i, b := range s.ByRoom {
		b.Items = make([]LineItem, len(s.ByRoom[i].Items))
		for j, li := range s.ByRoom[i].Items {
			li.Item = li.Item.Clone()
			b.Items[j] = li
		}
		out.ByRoom[i] = b
	}
	return &out
}

// Room returns the bucket with the given name.
func (s *BudgetSnapshot) Room(name string) (RoomBucket, bool) {
	for _, b := range s.ByRoom {
		if b.RoomName == name {
			return b, true
		}
	}
	return RoomBucket{}, false
}
