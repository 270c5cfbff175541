package budget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/events"
	"furniture-catalog/internal/store"
)

// Recorder observes engine activity. The metrics package provides the
// Prometheus implementation.
type Recorder interface {
	ObserveMutation(op string, err error)
	ObserveSnapshot(snap *domain.BudgetSnapshot, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMutation(string, error)                         {}
func (nopRecorder) ObserveSnapshot(*domain.BudgetSnapshot, time.Duration) {}

// Engine applies mutations to the item store and recomputes the budget
// after every successful save.
type Engine struct {
	mu        sync.Mutex
	store     store.ItemStore
	now       func() time.Time
	log       *slog.Logger
	publisher events.Publisher
	recorder  Recorder

	// last is the most recent snapshot handed out; rejected mutations return it.
	last *domain.BudgetSnapshot
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l.With("component", "engine") }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine returns an engine backed by s.
func NewEngine(s store.ItemStore, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		now:       time.Now,
		log:       slog.Default().With("component", "engine"),
		publisher: events.Nop{},
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Budget loads the collection and returns a fresh snapshot.
func (e *Engine) Budget(ctx context.Context) (*domain.BudgetSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return e.recompute(items), nil
}

// UpdatePrice replaces the raw price string verbatim.
func (e *Engine) UpdatePrice(ctx context.Context, id, rawPrice string) (*domain.BudgetSnapshot, error) {
	return e.mutate(ctx, "update_price", events.ActionPriceChanged, id, func(it *domain.FurnitureItem) {
		it.Price = rawPrice
		it.PriceAutoSuggested = false
	})
}

// UpdateQuantity sets the stored quantity. Negative values leave everything
// untouched and return the previous snapshot; zero is kept as entered.
func (e *Engine) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.BudgetSnapshot, error) {
	if quantity >= 0 {
		return e.mutate(ctx, "update_quantity", events.ActionQtyChanged, id, func(it *domain.FurnitureItem) {
			it.Quantity = quantity
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(items, id) < 0 {
		return nil, &domain.ItemNotFoundError{ID: id}
	}
	e.log.DebugContext(ctx, "ignoring negative quantity", "item_id", id, "quantity", quantity)
	if e.last != nil {
		return e.last.Clone(), nil
	}
	return e.recompute(items), nil
}

// UpdateRoom replaces the room name. An empty name moves the item to Unassigned.
func (e *Engine) UpdateRoom(ctx context.Context, id, room string) (*domain.BudgetSnapshot, error) {
	return e.mutate(ctx, "update_room", events.ActionRoomChanged, id, func(it *domain.FurnitureItem) {
		it.Room = room
	})
}

// UpdateRoomNumber replaces the room number; nil clears it.
func (e *Engine) UpdateRoomNumber(ctx context.Context, id string, number *int) (*domain.BudgetSnapshot, error) {
	var n *int
	if number != nil {
		v := *number
		n = &v
	}
	return e.mutate(ctx, "update_room_number", events.ActionRoomChanged, id, func(it *domain.FurnitureItem) {
		it.RoomNumber = n
	})
}

// DeleteItem removes the item from the collection.
func (e *Engine) DeleteItem(ctx context.Context, id string) (*domain.BudgetSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.store.Load(ctx)
	if err != nil {
		e.recorder.ObserveMutation("delete", err)
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		err := &domain.ItemNotFoundError{ID: id}
		e.recorder.ObserveMutation("delete", err)
		return nil, err
	}
	items = append(items[:idx], items[idx+1:]...)

	if err := e.store.Save(ctx, items); err != nil {
		e.recorder.ObserveMutation("delete", err)
		return nil, err
	}
	e.recorder.ObserveMutation("delete", nil)
	e.publish(ctx, events.ActionDeleted, id)
	return e.recompute(items), nil
}

// mutate runs the lookup, apply, stamp, save, recompute cycle for one item.
func (e *Engine) mutate(ctx context.Context, op string, action events.Action, id string, apply func(*domain.FurnitureItem)) (*domain.BudgetSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, _, err := e.modifyLocked(ctx, op, action, id, func(it *domain.FurnitureItem) error {
		apply(it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.recompute(items), nil
}

// modifyLocked loads the collection, applies fn to the item with id, stamps
// DateModified and saves. The caller holds e.mu.
func (e *Engine) modifyLocked(ctx context.Context, op string, action events.Action, id string, fn func(*domain.FurnitureItem) error) ([]domain.FurnitureItem, int, error) {
	items, err := e.store.Load(ctx)
	if err != nil {
		e.recorder.ObserveMutation(op, err)
		return nil, -1, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		err := &domain.ItemNotFoundError{ID: id}
		e.recorder.ObserveMutation(op, err)
		return nil, -1, err
	}

	if err := fn(&items[idx]); err != nil {
		e.recorder.ObserveMutation(op, err)
		return nil, -1, err
	}
	items[idx].DateModified = e.now()

	if err := e.store.Save(ctx, items); err != nil {
		e.recorder.ObserveMutation(op, err)
		return nil, -1, err
	}
	e.recorder.ObserveMutation(op, nil)
	e.publish(ctx, action, id)
	return items, idx, nil
}

func (e *Engine) recompute(items []domain.FurnitureItem) *domain.BudgetSnapshot {
	start := time.Now()
	snap := ComputeBudget(items, e.now())
	e.recorder.ObserveSnapshot(&snap, time.Since(start))
	e.last = &snap
	return snap.Clone()
}

func (e *Engine) publish(ctx context.Context, action events.Action, id string) {
	if err := e.publisher.Publish(ctx, events.NewItemEvent(action, id, e.now())); err != nil {
		e.log.WarnContext(ctx, "failed to publish item event",
			"action", action,
			"item_id", id,
			"error", err)
	}
}

func indexOf(items []domain.FurnitureItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
