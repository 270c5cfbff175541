package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture-catalog/internal/domain"
)

func TestPriceSuggester_Suggest(t *testing.T) {
	s := DefaultPriceSuggester()

	tests := []struct {
		name    string
		title   string
		url     string
		keyword string
		price   string
	}{
		{"exact keyword, neutral store", "Harmony Sofa", "https://www.wayfair.com/p/1", "sofa", "$1,299"},
		{"luxury multiplier", "Cloud Sectional", "https://rh.com/cloud", "sectional", "$6,248"},
		{"budget multiplier rounds", "KIVIK Sofa", "https://www.ikea.com/us/kivik", "sofa", "$909"},
		{"longer phrase wins", "Ergonomic Office Chair", "https://amazon.com/x", "office chair", "$399"},
		{"unknown store", "Brass Floor Lamp", "https://smallshop.example/lamp", "floor lamp", "$249"},
		{"plural title", "Set of 2 Nightstands", "", "nightstand", "$349"},
		{"partial word", "Oak Dining Set", "", "dining table", "$1,499"},
		{"case insensitive", "MID-CENTURY DRESSER", "https://westelm.com/d", "dresser", "$1,798"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sug, ok := s.Suggest(tt.title, tt.url)
			require.True(t, ok)
			assert.Equal(t, tt.keyword, sug.Keyword)
			assert.Equal(t, tt.price, sug.Price())
		})
	}
}

func TestPriceSuggester_NoMatch(t *testing.T) {
	s := DefaultPriceSuggester()
	for _, title := range []string{"", "Gift card", "a b c"} {
		_, ok := s.Suggest(title, "https://ikea.com")
		assert.False(t, ok, title)
	}
}

func TestPriceSuggester_Enricher(t *testing.T) {
	fill := DefaultPriceSuggester().Enricher()

	empty := domain.FurnitureItem{Title: "Jute Rug", URL: "https://target.com/rug"}
	require.True(t, fill(&empty))
	assert.Equal(t, "$479", empty.Price)
	assert.True(t, empty.PriceAutoSuggested)

	priced := domain.FurnitureItem{Title: "Jute Rug", Price: "$120"}
	assert.False(t, fill(&priced))
	assert.Equal(t, "$120", priced.Price)
	assert.False(t, priced.PriceAutoSuggested)

	unknown := domain.FurnitureItem{Title: "Mystery box"}
	assert.False(t, fill(&unknown))
	assert.Empty(t, unknown.Price)
}

func TestStoreFromURL(t *testing.T) {
	assert.Equal(t, "westelm.com", StoreFromURL("https://www.westelm.com/products/x"))
	assert.Equal(t, "ikea.com", StoreFromURL("  https://IKEA.com/us "))
	assert.Equal(t, "", StoreFromURL("not a url"))
	assert.Equal(t, "", StoreFromURL(""))
}
