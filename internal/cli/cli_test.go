package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/store"
)

func seedFile(t *testing.T, items ...domain.FurnitureItem) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, store.NewFileStore(path).Save(context.Background(), items))
	return path
}

func run(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(&out)
	base := []string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--backend", "file", "--file", path}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func loadFile(t *testing.T, path string) []domain.FurnitureItem {
	t.Helper()
	items, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	return items
}

func sampleItems() []domain.FurnitureItem {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	two := 2
	return []domain.FurnitureItem{
		{ID: "a", Title: "Harmony Sofa", URL: "https://www.westelm.com/sofa", Price: "$1,299.00", Quantity: 1, Room: "Living Room", DateAdded: now, DateModified: now},
		{ID: "b", Title: "Oak Nightstand", URL: "https://www.ikea.com/p/nightstand", Quantity: 2, Room: "Bedroom", RoomNumber: &two, DateAdded: now, DateModified: now},
		{ID: "c", Title: "Mystery Box", URL: "https://example.com/box", Price: "$20", Quantity: 1, DateAdded: now, DateModified: now},
	}
}

func TestBudgetCmd(t *testing.T) {
	path := seedFile(t, sampleItems()...)

	out, err := run(t, path, "budget")
	require.NoError(t, err)
	assert.Contains(t, out, "FURNITURE BUDGET")
	assert.Contains(t, out, "$1,319.00")
	assert.Contains(t, out, "Living Room")
	assert.Contains(t, out, "Unassigned")

	out, err = run(t, path, "budget", "--room", "living room")
	require.NoError(t, err)
	assert.Contains(t, out, "Harmony Sofa")
	assert.NotContains(t, out, "Mystery Box")

	_, err = run(t, path, "budget", "--room", "Garage")
	assert.EqualError(t, err, `no room named "Garage"`)
}

func TestBudgetCmd_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	out, err := run(t, path, "budget")
	require.NoError(t, err)
	assert.Contains(t, out, "No items on the list yet.")
}

func TestRoomsCmd(t *testing.T) {
	out, err := run(t, seedFile(t, sampleItems()...), "rooms")
	require.NoError(t, err)
	assert.Contains(t, out, "Living Room")
	assert.Contains(t, out, "Bedroom")
	assert.Contains(t, out, "98%")
}

func TestExportCSVCmd(t *testing.T) {
	path := seedFile(t, sampleItems()...)

	out, err := run(t, path, "export", "csv")
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Harmony Sofa", records[1][0])

	dest := filepath.Join(t.TempDir(), "budget.csv")
	_, err = run(t, path, "export", "csv", "--out", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestImportBookmarksCmd(t *testing.T) {
	path := seedFile(t)
	bookmarks := filepath.Join(t.TempDir(), "bookmarks.html")
	require.NoError(t, os.WriteFile(bookmarks, []byte(`<DL><p>
<DT><H3>New House</H3>
<DL><p>
<DT><A HREF="https://www.cb2.com/chair">Lounge Chair</A>
<DT><A HREF="https://www.rh.com/rug">Wool Rug</A>
</DL><p>
<DT><A HREF="https://example.com/">Elsewhere</A>
</DL><p>`), 0o600))

	out, err := run(t, path, "import", "bookmarks", bookmarks, "--folder", "house")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 of 2 bookmarks.")

	items := loadFile(t, path)
	require.Len(t, items, 2)
	assert.Equal(t, "Lounge Chair", items[0].Title)
	assert.Equal(t, "cb2.com", items[0].Store)
	assert.Equal(t, "New House", items[0].Category)

	_, err = run(t, path, "import", "bookmarks")
	assert.Error(t, err)
}

func TestSuggestPricesCmd(t *testing.T) {
	path := seedFile(t, sampleItems()...)

	out, err := run(t, path, "suggest-prices", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "nightstand")
	assert.Contains(t, out, "$244")
	assert.Contains(t, out, "Dry run")
	for _, it := range loadFile(t, path) {
		if it.ID == "b" {
			assert.Empty(t, it.Price)
		}
	}

	out, err = run(t, path, "suggest-prices")
	require.NoError(t, err)
	assert.Contains(t, out, "Suggested prices for 1 items. New total: $1,807.00")

	for _, it := range loadFile(t, path) {
		if it.ID == "b" {
			assert.Equal(t, "$244", it.Price)
			assert.True(t, it.PriceAutoSuggested)
		}
	}
}

func TestInvalidBackend(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd(&out)
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "x.env"), "--backend", "floppy", "rooms"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}
