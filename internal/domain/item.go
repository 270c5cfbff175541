package domain

import "time"

// UnassignedRoom is the bucket name used for items whose Room is empty.
const UnassignedRoom = "Unassigned"

// FurnitureItem is one entry on the shopping list.
// Price is kept exactly as entered; numeric values are derived on every budget pass.
type FurnitureItem struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	URL                string    `json:"url"`
	Price              string    `json:"price"`
	Quantity           int       `json:"quantity"`
	Room               string    `json:"room"`
	RoomNumber         *int      `json:"roomNumber,omitempty"`
	Category           string    `json:"category"`
	Store              string    `json:"store"`
	Notes              string    `json:"notes"`
	ImageURL           string    `json:"imageUrl"`
	Favorite           bool      `json:"favorite"`
	BookmarkFolder     string    `json:"bookmarkFolder,omitempty"`
	PriceAutoSuggested bool      `json:"priceAutoSuggested,omitempty"`
	DateAdded          time.Time `json:"dateAdded"`
	DateModified       time.Time `json:"dateModified"`
}

// RoomKey returns the bucket this item aggregates into.
func (it FurnitureItem) RoomKey() string {
	if it.Room == "" {
		return UnassignedRoom
	}
	return it.Room
}

// Clone returns a copy that shares no pointers with it.
func (it FurnitureItem) Clone() FurnitureItem {
	if it.RoomNumber != nil {
		n := *it.RoomNumber
		it.RoomNumber = &n
	}
	return it
}

// CloneItems copies a collection so callers can mutate it freely.
func CloneItems(items []FurnitureItem) []FurnitureItem {
	out := make([]FurnitureItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// ItemFilter narrows a catalog listing.
type ItemFilter struct {
	Search       string
	Category     string
	FavoriteOnly bool
}
