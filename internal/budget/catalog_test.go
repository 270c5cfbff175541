package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/events"
	"furniture-catalog/internal/store"
)

func TestEngine_AddItem(t *testing.T) {
	e, s, pub := newTestEngine(t)
	ctx := context.Background()

	item, err := e.AddItem(ctx, NewItem{
		Title: "  Oak Dresser ",
		URL:   "https://potterybarn.com/dresser",
		Price: "$899",
		Room:  "Bedroom",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Oak Dresser", item.Title)
	assert.Equal(t, 1, item.Quantity, "quantity defaults to one")
	assert.Equal(t, item.DateAdded, item.DateModified)

	items, _ := s.Load(ctx)
	require.Len(t, items, 4)
	assert.Equal(t, item, items[3])
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ActionCreated, pub.events[0].Action)
}

func TestEngine_AddItem_Validation(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	neg := -2

	tests := []struct {
		name  string
		in    NewItem
		field string
	}{
		{"missing title", NewItem{URL: "https://x"}, "title"},
		{"blank title", NewItem{Title: "   ", URL: "https://x"}, "title"},
		{"missing url", NewItem{Title: "Chair"}, "url"},
		{"negative quantity", NewItem{Title: "Chair", URL: "https://x", Quantity: &neg}, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.AddItem(ctx, tt.in)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, errors.Is(err, domain.ErrInvalidItem))
		})
	}
	items, _ := s.Load(ctx)
	assert.Len(t, items, 3)
}

func TestEngine_ImportItems(t *testing.T) {
	e, s, pub := newTestEngine(t)
	ctx := context.Background()

	n, err := e.ImportItems(ctx, []NewItem{
		{Title: "Lamp", URL: "https://ikea.com/lamp", Store: "ikea.com", BookmarkFolder: "Furniture"},
		{Title: "", URL: "https://broken"},
		{Title: "Rug", URL: "https://wayfair.com/rug", Store: "wayfair.com", BookmarkFolder: "Furniture"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, _ := s.Load(ctx)
	require.Len(t, items, 5)
	assert.Equal(t, "Furniture", items[3].BookmarkFolder)
	assert.NotEqual(t, items[3].ID, items[4].ID)
	assert.Len(t, pub.events, 2)
}

func TestEngine_ImportItems_NothingValid(t *testing.T) {
	ms := new(MockItemStore)
	ms.On("Load", context.Background()).Return(seedItems(), nil)
	e := NewEngine(ms)

	n, err := e.ImportItems(context.Background(), []NewItem{{Title: "x"}})
	require.NoError(t, err)
	assert.Zero(t, n)
	ms.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestEngine_UpdateItem(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.EnrichItems(ctx, func(it *domain.FurnitureItem) bool {
		if it.ID != "pillow" {
			return false
		}
		it.Price = "$40"
		it.PriceAutoSuggested = true
		return true
	})
	require.NoError(t, err)

	title, price, notes := "Throw Pillow", "$35", "linen"
	n := 3
	item, err := e.UpdateItem(ctx, "pillow", ItemPatch{Title: &title, Price: &price, Notes: &notes, RoomNumber: &n})
	require.NoError(t, err)
	assert.Equal(t, "Throw Pillow", item.Title)
	assert.Equal(t, "$35", item.Price)
	assert.False(t, item.PriceAutoSuggested, "manual price clears the suggestion flag")
	assert.Equal(t, "linen", item.Notes)
	assert.Equal(t, 3, *item.RoomNumber)
	assert.Equal(t, "Living Room", item.Room, "untouched fields survive")

	item, err = e.UpdateItem(ctx, "pillow", ItemPatch{ClearRoomNumber: true, RoomNumber: &n})
	require.NoError(t, err)
	assert.Nil(t, item.RoomNumber)

	empty := " "
	_, err = e.UpdateItem(ctx, "pillow", ItemPatch{Title: &empty})
	assert.True(t, errors.Is(err, domain.ErrInvalidItem))
}

func TestEngine_ToggleFavorite(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := e.ToggleFavorite(ctx, "desk")
	require.NoError(t, err)
	assert.True(t, item.Favorite)

	item, err = e.ToggleFavorite(ctx, "desk")
	require.NoError(t, err)
	assert.False(t, item.Favorite)
}

func TestEngine_EnrichItems(t *testing.T) {
	e, s, pub := newTestEngine(t)
	ctx := context.Background()

	snap, changed, err := e.EnrichItems(ctx, func(it *domain.FurnitureItem) bool {
		if it.Price != "" {
			return false
		}
		it.Price = "$50"
		it.PriceAutoSuggested = true
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.True(t, snap.TotalCost.Equal(dec("1600.50")))

	items, _ := s.Load(ctx)
	assert.True(t, items[1].PriceAutoSuggested)
	assert.Len(t, pub.events, 1)

	_, changed, err = e.EnrichItems(ctx, func(*domain.FurnitureItem) bool { return false })
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestEngine_CategoriesAndRooms(t *testing.T) {
	items := seedItems()
	items[0].Category = "Seating"
	items[1].Category = "Decor"
	items[2].Category = "Seating"
	items[2].Room = "Office"
	e := NewEngine(store.NewMemoryStore(items...))
	ctx := context.Background()

	cats, err := e.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Decor", "Seating"}, cats)

	rooms, err := e.Rooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Living Room", "Office"}, rooms)
}

func TestFilterItems(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.FurnitureItem{
		{ID: "1", Title: "Walnut Desk", Store: "article.com", Category: "Office", DateModified: base},
		{ID: "2", Title: "Chair", Notes: "matches the DESK", Category: "Office", Favorite: true, DateModified: base.Add(2 * time.Hour)},
		{ID: "3", Title: "Sofa", Store: "deskshop.com", Category: "Seating", DateModified: base.Add(time.Hour)},
		{ID: "4", Title: "Rug", Category: "Decor", Favorite: true, DateModified: base.Add(3 * time.Hour)},
	}

	ids := func(in []domain.FurnitureItem) []string {
		out := []string{}
		for _, it := range in {
			out = append(out, it.ID)
		}
		return out
	}

	assert.Equal(t, []string{"4", "2", "3", "1"}, ids(FilterItems(items, domain.ItemFilter{})))
	assert.Equal(t, []string{"2", "3", "1"}, ids(FilterItems(items, domain.ItemFilter{Search: "desk"})))
	assert.Equal(t, []string{"2", "1"}, ids(FilterItems(items, domain.ItemFilter{Category: "Office"})))
	assert.Equal(t, []string{"4", "2"}, ids(FilterItems(items, domain.ItemFilter{FavoriteOnly: true})))
	assert.Equal(t, []string{"2"}, ids(FilterItems(items, domain.ItemFilter{Search: "desk", FavoriteOnly: true})))
}
