package budget

import (
	"context"
	"sort"
	"strings"

	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/events"
)

// NewItem is the input for adding an item to the catalog.
type NewItem struct {
	Title              string
	URL                string
	Price              string
	Quantity           *int
	Room               string
	RoomNumber         *int
	Category           string
	Store              string
	Notes              string
	ImageURL           string
	Favorite           bool
	BookmarkFolder     string
	PriceAutoSuggested bool
}

// ItemPatch changes the non-nil fields of an existing item.
type ItemPatch struct {
	Title      *string
	URL        *string
	Price      *string
	Quantity   *int
	Room       *string
	RoomNumber *int
	// ClearRoomNumber unsets the room number; it wins over RoomNumber.
	ClearRoomNumber bool
	Category        *string
	Store           *string
	Notes           *string
	ImageURL        *string
	Favorite        *bool
}

// Enricher fills in missing fields on an item and reports whether it changed it.
type Enricher func(it *domain.FurnitureItem) bool

// ListItems returns the items matching f, most recently modified first.
func (e *Engine) ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.FurnitureItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterItems(items, f), nil
}

// GetItem returns one item by id.
func (e *Engine) GetItem(ctx context.Context, id string) (domain.FurnitureItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		return domain.FurnitureItem{}, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return domain.FurnitureItem{}, &domain.ItemNotFoundError{ID: id}
	}
	return items[idx], nil
}

// AddItem appends a new item to the collection.
func (e *Engine) AddItem(ctx context.Context, in NewItem) (domain.FurnitureItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, err := e.buildItem(in)
	if err != nil {
		e.recorder.ObserveMutation("add", err)
		return domain.FurnitureItem{}, err
	}

	items, err := e.store.Load(ctx)
	if err != nil {
		e.recorder.ObserveMutation("add", err)
		return domain.FurnitureItem{}, err
	}
	items = append(items, item)
	if err := e.store.Save(ctx, items); err != nil {
		e.recorder.ObserveMutation("add", err)
		return domain.FurnitureItem{}, err
	}
	e.recorder.ObserveMutation("add", nil)
	e.publish(ctx, events.ActionCreated, item.ID)
	e.recompute(items)
	return item, nil
}

// ImportItems adds every candidate in one save and returns how many were added.
// Candidates that fail validation are skipped.
func (e *Engine) ImportItems(ctx context.Context, candidates []NewItem) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		e.recorder.ObserveMutation("import", err)
		return 0, err
	}

	added := make([]domain.FurnitureItem, 0, len(candidates))
	for _, c := range candidates {
		item, err := e.buildItem(c)
		if err != nil {
			e.log.DebugContext(ctx, "skipping import candidate", "url", c.URL, "error", err)
			continue
		}
		added = append(added, item)
	}
	if len(added) == 0 {
		return 0, nil
	}

	items = append(items, added...)
	if err := e.store.Save(ctx, items); err != nil {
		e.recorder.ObserveMutation("import", err)
		return 0, err
	}
	e.recorder.ObserveMutation("import", nil)
	for _, it := range added {
		e.publish(ctx, events.ActionImported, it.ID)
	}
	e.recompute(items)
	e.log.InfoContext(ctx, "imported items", "count", len(added), "skipped", len(candidates)-len(added))
	return len(added), nil
}

// UpdateItem applies p to the item with id.
func (e *Engine) UpdateItem(ctx context.Context, id string, p ItemPatch) (domain.FurnitureItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, idx, err := e.modifyLocked(ctx, "update", events.ActionUpdated, id, func(it *domain.FurnitureItem) error {
		return p.apply(it)
	})
	if err != nil {
		return domain.FurnitureItem{}, err
	}
	e.recompute(items)
	return items[idx], nil
}

// ToggleFavorite flips the favorite flag.
func (e *Engine) ToggleFavorite(ctx context.Context, id string) (domain.FurnitureItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, idx, err := e.modifyLocked(ctx, "toggle_favorite", events.ActionFavorite, id, func(it *domain.FurnitureItem) error {
		it.Favorite = !it.Favorite
		return nil
	})
	if err != nil {
		return domain.FurnitureItem{}, err
	}
	e.recompute(items)
	return items[idx], nil
}

// EnrichItems runs fn over every item, saves once if anything changed and
// returns the fresh snapshot plus the number of items fn modified.
func (e *Engine) EnrichItems(ctx context.Context, fn Enricher) (*domain.BudgetSnapshot, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		e.recorder.ObserveMutation("enrich", err)
		return nil, 0, err
	}

	var changed []string
	now := e.now()
	for i := range items {
		if fn(&items[i]) {
			items[i].DateModified = now
			changed = append(changed, items[i].ID)
		}
	}
	if len(changed) == 0 {
		return e.recompute(items), 0, nil
	}

	if err := e.store.Save(ctx, items); err != nil {
		e.recorder.ObserveMutation("enrich", err)
		return nil, 0, err
	}
	e.recorder.ObserveMutation("enrich", nil)
	for _, id := range changed {
		e.publish(ctx, events.ActionUpdated, id)
	}
	return e.recompute(items), len(changed), nil
}

// Categories lists the distinct non-empty categories in use.
func (e *Engine) Categories(ctx context.Context) ([]string, error) {
	return e.distinct(ctx, func(it domain.FurnitureItem) string { return it.Category })
}

// Rooms lists the distinct non-empty room names in use.
func (e *Engine) Rooms(ctx context.Context) ([]string, error) {
	return e.distinct(ctx, func(it domain.FurnitureItem) string { return it.Room })
}

func (e *Engine) distinct(ctx context.Context, field func(domain.FurnitureItem) string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		v := field(it)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (e *Engine) buildItem(in NewItem) (domain.FurnitureItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.FurnitureItem{}, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return domain.FurnitureItem{}, &domain.ValidationError{Field: "url", Reason: "must not be empty"}
	}
	qty := 1
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return domain.FurnitureItem{}, &domain.ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		qty = *in.Quantity
	}

	now := e.now()
	item := domain.FurnitureItem{
		ID:                 e.store.GenerateID(),
		Title:              title,
		URL:                url,
		Price:              in.Price,
		Quantity:           qty,
		Room:               in.Room,
		Category:           in.Category,
		Store:              in.Store,
		Notes:              in.Notes,
		ImageURL:           in.ImageURL,
		Favorite:           in.Favorite,
		BookmarkFolder:     in.BookmarkFolder,
		PriceAutoSuggested: in.PriceAutoSuggested,
		DateAdded:          now,
		DateModified:       now,
	}
	if in.RoomNumber != nil {
		n := *in.RoomNumber
		item.RoomNumber = &n
	}
	return item, nil
}

func (p ItemPatch) apply(it *domain.FurnitureItem) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
		}
		it.Title = t
	}
	if p.URL != nil {
		u := strings.TrimSpace(*p.URL)
		if u == "" {
			return &domain.ValidationError{Field: "url", Reason: "must not be empty"}
		}
		it.URL = u
	}
	if p.Quantity != nil {
		if *p.Quantity < 0 {
			return &domain.ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		it.Quantity = *p.Quantity
	}
	if p.Price != nil {
		it.Price = *p.Price
		it.PriceAutoSuggested = false
	}
	if p.Room != nil {
		it.Room = *p.Room
	}
	switch {
	case p.ClearRoomNumber:
		it.RoomNumber = nil
	case p.RoomNumber != nil:
		n := *p.RoomNumber
		it.RoomNumber = &n
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Store != nil {
		it.Store = *p.Store
	}
	if p.Notes != nil {
		it.Notes = *p.Notes
	}
	if p.ImageURL != nil {
		it.ImageURL = *p.ImageURL
	}
	if p.Favorite != nil {
		it.Favorite = *p.Favorite
	}
	return nil
}

// FilterItems applies f and orders the result by DateModified, newest first.
func FilterItems(items []domain.FurnitureItem, f domain.ItemFilter) []domain.FurnitureItem {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.FurnitureItem, 0, len(items))
	for _, it := range items {
		if f.FavoriteOnly && !it.Favorite {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Title), search) &&
			!strings.Contains(strings.ToLower(it.Notes), search) &&
			!strings.Contains(strings.ToLower(it.Store), search) {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateModified.After(out[j].DateModified)
	})
	return out
}
