package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"furniture-catalog/internal/domain"
)

// PostgresStore keeps the collection in the furniture.items table.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStore{db: db, log: log.With("component", "store")}
}

// OpenPostgres connects with dsn, applies migrations and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, log *slog.Logger) (*PostgresStore, error) {
	if err := RunPostgresMigrations(dsn); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to ping postgres: %w", err)
	}
	return NewPostgresStore(db, log), nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]domain.FurnitureItem, error) {
	query := `SELECT ` + itemColumns + ` FROM furniture.items ORDER BY position;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, persistenceErr("Load failed to query items", err)
	}
	defer rows.Close()

	items := []domain.FurnitureItem{}
	for rows.Next() {
		var (
			it         domain.FurnitureItem
			position   int
			roomNumber sql.NullInt64
		)
		if err := rows.Scan(
			&position, &it.ID, &it.Title, &it.URL, &it.Price, &it.Quantity, &it.Room, &roomNumber,
			&it.Category, &it.Store, &it.Notes, &it.ImageURL, &it.Favorite, &it.BookmarkFolder,
			&it.PriceAutoSuggested, &it.DateAdded, &it.DateModified,
		); err != nil {
			return nil, corruptErr("furniture.items", fmt.Errorf("scan item row: %w", err))
		}
		if roomNumber.Valid {
			n := int(roomNumber.Int64)
			it.RoomNumber = &n
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("Load iteration", err)
	}
	if err := checkCollection("furniture.items", items); err != nil {
		return nil, err
	}
	return items, nil
}

// Save rewrites the table inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, items []domain.FurnitureItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceErr("Save failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM furniture.items;`); err != nil {
		return persistenceErr("Save failed to clear items", err)
	}

	query := `
		INSERT INTO furniture.items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	for i, it := range items {
		var roomNumber sql.NullInt64
		if it.RoomNumber != nil {
			roomNumber = sql.NullInt64{Int64: int64(*it.RoomNumber), Valid: true}
		}
		_, err := tx.ExecContext(ctx, query,
			i, it.ID, it.Title, it.URL, it.Price, it.Quantity, it.Room, roomNumber,
			it.Category, it.Store, it.Notes, it.ImageURL, it.Favorite, it.BookmarkFolder,
			it.PriceAutoSuggested, it.DateAdded, it.DateModified,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" { // Unique violation
				return persistenceErr("Save", fmt.Errorf("duplicate item id %q: %w", it.ID, err))
			}
			return persistenceErr(fmt.Sprintf("Save failed to insert item %s", it.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceErr("Save failed to commit", err)
	}
	return nil
}

func (s *PostgresStore) GenerateID() string { return NewID() }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.log.Info("closing database connection pool")
		if err := s.db.Close(); err != nil {
			s.log.Error("failed to close database connection pool", "error", err)
			return err
		}
		return nil
	}
	return nil
}
