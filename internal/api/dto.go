package api

import (
	"time"

	"github.com/shopspring/decimal"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
)

// ItemCreateInput is the body of POST /api/v1/items.
type ItemCreateInput struct {
	Title      string `json:"title" validate:"required,max=500"`
	URL        string `json:"url" validate:"required,url"`
	Price      string `json:"price" validate:"max=64"`
	Quantity   *int   `json:"quantity" validate:"omitempty,gte=0"`
	Room       string `json:"room" validate:"max=100"`
	RoomNumber *int   `json:"roomNumber" validate:"omitempty,gt=0"`
	Category   string `json:"category" validate:"max=100"`
	Store      string `json:"store" validate:"max=255"`
	Notes      string `json:"notes" validate:"max=4000"`
	ImageURL   string `json:"imageUrl" validate:"omitempty,url"`
	Favorite   bool   `json:"favorite"`
	Folder     string `json:"bookmarkFolder" validate:"max=255"`
}

func (in ItemCreateInput) toNewItem() budget.NewItem {
	return budget.NewItem{
		Title:          in.Title,
		URL:            in.URL,
		Price:          in.Price,
		Quantity:       in.Quantity,
		Room:           in.Room,
		RoomNumber:     in.RoomNumber,
		Category:       in.Category,
		Store:          in.Store,
		Notes:          in.Notes,
		ImageURL:       in.ImageURL,
		Favorite:       in.Favorite,
		BookmarkFolder: in.Folder,
	}
}

// ItemUpdateInput is the body of PUT /api/v1/items/{itemId}. Omitted fields
// are left alone.
type ItemUpdateInput struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=500"`
	URL             *string `json:"url" validate:"omitempty,url"`
	Price           *string `json:"price" validate:"omitempty,max=64"`
	Quantity        *int    `json:"quantity" validate:"omitempty,gte=0"`
	Room            *string `json:"room" validate:"omitempty,max=100"`
	RoomNumber      *int    `json:"roomNumber" validate:"omitempty,gt=0"`
	ClearRoomNumber bool    `json:"clearRoomNumber"`
	Category        *string `json:"category" validate:"omitempty,max=100"`
	Store           *string `json:"store" validate:"omitempty,max=255"`
	Notes           *string `json:"notes" validate:"omitempty,max=4000"`
	ImageURL        *string `json:"imageUrl" validate:"omitempty,max=2048"`
	Favorite        *bool   `json:"favorite"`
}

func (in ItemUpdateInput) toPatch() budget.ItemPatch {
	return budget.ItemPatch{
		Title:           in.Title,
		URL:             in.URL,
		Price:           in.Price,
		Quantity:        in.Quantity,
		Room:            in.Room,
		RoomNumber:      in.RoomNumber,
		ClearRoomNumber: in.ClearRoomNumber,
		Category:        in.Category,
		Store:           in.Store,
		Notes:           in.Notes,
		ImageURL:        in.ImageURL,
		Favorite:        in.Favorite,
	}
}

type PriceInput struct {
	Price string `json:"price" validate:"max=64"`
}

// QuantityInput accepts negative values; the engine treats them as a no-op.
type QuantityInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type RoomInput struct {
	Room string `json:"room" validate:"max=100"`
}

// RoomNumberInput clears the room number when RoomNumber is null.
type RoomNumberInput struct {
	RoomNumber *int `json:"roomNumber" validate:"omitempty,gt=0"`
}

type LineItemResponse struct {
	Item      domain.FurnitureItem `json:"item"`
	UnitPrice float64              `json:"unitPrice"`
	Quantity  int                  `json:"quantity"`
	LineTotal float64              `json:"lineTotal"`
}

type RoomResponse struct {
	RoomName  string             `json:"roomName"`
	ItemCount int                `json:"itemCount"`
	TotalCost float64            `json:"totalCost"`
	Items     []LineItemResponse `json:"items"`
}

// BudgetResponse is a BudgetSnapshot with money rendered as numbers.
type BudgetResponse struct {
	TotalItemCount int            `json:"totalItemCount"`
	TotalCost      float64        `json:"totalCost"`
	AveragePerItem float64        `json:"averagePerItem"`
	RoomsUsed      int            `json:"roomsUsed"`
	ByRoom         []RoomResponse `json:"byRoom"`
	FormattedTotal string         `json:"formattedTotal"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func newBudgetResponse(snap *domain.BudgetSnapshot) BudgetResponse {
	resp := BudgetResponse{
		TotalItemCount: snap.TotalItemCount,
		TotalCost:      money(snap.TotalCost),
		AveragePerItem: money(snap.AveragePerItem),
		RoomsUsed:      snap.RoomsUsed,
		ByRoom:         make([]RoomResponse, 0, len(snap.ByRoom)),
		FormattedTotal: budget.FormatMoney(snap.TotalCost),
		GeneratedAt:    snap.GeneratedAt,
	}
	for _, b := range snap.ByRoom {
		room := RoomResponse{
			RoomName:  b.RoomName,
			ItemCount: b.ItemCount,
			TotalCost: money(b.TotalCost),
			Items:     make([]LineItemResponse, 0, len(b.Items)),
		}
		for _, li := range b.Items {
			room.Items = append(room.Items, LineItemResponse{
				Item:      li.Item,
				UnitPrice: money(li.UnitPrice),
				Quantity:  li.Quantity,
				LineTotal: money(li.LineTotal),
			})
		}
		resp.ByRoom = append(resp.ByRoom, room)
	}
	return resp
}

// SuggestionResponse describes one price guess.
type SuggestionResponse struct {
	ItemID     string  `json:"itemId,omitempty"`
	Title      string  `json:"title"`
	Keyword    string  `json:"keyword"`
	Price      string  `json:"price"`
	Amount     float64 `json:"amount"`
	Min        int64   `json:"min"`
	Max        int64   `json:"max"`
	Multiplier float64 `json:"multiplier"`
}

type ImportResponse struct {
	Found    int `json:"found"`
	Imported int `json:"imported"`
}
