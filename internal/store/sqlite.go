package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"furniture-catalog/internal/domain"
)

const itemColumns = `position, id, title, url, price, quantity, room, room_number, category, store,
	notes, image_url, favorite, bookmark_folder, price_auto_suggested, date_added, date_modified`

// SQLiteStore keeps the collection in a local sqlite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates the database directory, applies migrations and opens path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: creating database dir: %w", err)
	}
	if err := RunSQLiteMigrations(path); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]domain.FurnitureItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY position`)
	if err != nil {
		return nil, persistenceErr("query items", err)
	}
	defer rows.Close()

	items := []domain.FurnitureItem{}
	for rows.Next() {
		var (
			it              domain.FurnitureItem
			position        int
			roomNumber      sql.NullInt64
			favorite, auto  int
			added, modified string
		)
		if err := rows.Scan(
			&position, &it.ID, &it.Title, &it.URL, &it.Price, &it.Quantity, &it.Room, &roomNumber,
			&it.Category, &it.Store, &it.Notes, &it.ImageURL, &favorite, &it.BookmarkFolder, &auto,
			&added, &modified,
		); err != nil {
			return nil, corruptErr(s.path, fmt.Errorf("scan item row: %w", err))
		}
		if roomNumber.Valid {
			n := int(roomNumber.Int64)
			it.RoomNumber = &n
		}
		it.Favorite = favorite != 0
		it.PriceAutoSuggested = auto != 0
		if it.DateAdded, err = time.Parse(time.RFC3339Nano, added); err != nil {
			return nil, corruptErr(s.path, fmt.Errorf("item %s date_added: %w", it.ID, err))
		}
		if it.DateModified, err = time.Parse(time.RFC3339Nano, modified); err != nil {
			return nil, corruptErr(s.path, fmt.Errorf("item %s date_modified: %w", it.ID, err))
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("iterate items", err)
	}
	return items, nil
}

// Save replaces every row inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, items []domain.FurnitureItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceErr("begin save", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return persistenceErr("clear items", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return persistenceErr("prepare insert", err)
	}
	defer stmt.Close()

	for i, it := range items {
		var roomNumber sql.NullInt64
		if it.RoomNumber != nil {
			roomNumber = sql.NullInt64{Int64: int64(*it.RoomNumber), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			i, it.ID, it.Title, it.URL, it.Price, it.Quantity, it.Room, roomNumber,
			it.Category, it.Store, it.Notes, it.ImageURL, boolToInt(it.Favorite), it.BookmarkFolder,
			boolToInt(it.PriceAutoSuggested),
			it.DateAdded.UTC().Format(time.RFC3339Nano), it.DateModified.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return persistenceErr(fmt.Sprintf("insert item %s", it.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceErr("commit save", err)
	}
	return nil
}

func (s *SQLiteStore) GenerateID() string { return NewID() }

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
