package api

import (
	"context"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
)

// BudgetService is the budget-mutation surface shared by HTTP and gRPC.
type BudgetService interface {
	Budget(ctx context.Context) (*domain.BudgetSnapshot, error)
	UpdatePrice(ctx context.Context, id, rawPrice string) (*domain.BudgetSnapshot, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.BudgetSnapshot, error)
	UpdateRoom(ctx context.Context, id, room string) (*domain.BudgetSnapshot, error)
	UpdateRoomNumber(ctx context.Context, id string, number *int) (*domain.BudgetSnapshot, error)
	DeleteItem(ctx context.Context, id string) (*domain.BudgetSnapshot, error)
}

// Catalog is everything the HTTP API needs from the engine.
type Catalog interface {
	BudgetService
	ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.FurnitureItem, error)
	GetItem(ctx context.Context, id string) (domain.FurnitureItem, error)
	AddItem(ctx context.Context, in budget.NewItem) (domain.FurnitureItem, error)
	ImportItems(ctx context.Context, candidates []budget.NewItem) (int, error)
	UpdateItem(ctx context.Context, id string, p budget.ItemPatch) (domain.FurnitureItem, error)
	ToggleFavorite(ctx context.Context, id string) (domain.FurnitureItem, error)
	EnrichItems(ctx context.Context, fn budget.Enricher) (*domain.BudgetSnapshot, int, error)
	Categories(ctx context.Context) ([]string, error)
	Rooms(ctx context.Context) ([]string, error)
}

// SheetsExporter pushes a snapshot to a spreadsheet.
type SheetsExporter interface {
	Export(ctx context.Context, snap *domain.BudgetSnapshot) (int, error)
}

// HealthChecker is anything /healthz should probe.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

var (
	_ Catalog       = (*budget.Engine)(nil)
	_ BudgetService = (*budget.Engine)(nil)
)
