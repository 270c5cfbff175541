package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
)

func TestRenderRooms_NegativeRoomTotal(t *testing.T) {
	snap := budget.ComputeBudget([]domain.FurnitureItem{
		{ID: "1", Price: "$500", Quantity: 1, Room: "Living Room"},
		{ID: "2", Price: "-100", Quantity: 1, Room: "Returns"},
	}, time.Now())

	var out string
	assert.NotPanics(t, func() { out = RenderRooms(&snap) })
	assert.Contains(t, out, "Returns")
	assert.Contains(t, out, "Living Room")
}

func TestShareBar(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name        string
		part, total string
		want        string
	}{
		{"half", "50", "100", "█████░░░░░  50%"},
		{"negative part", "-100", "400", "░░░░░░░░░░   0%"},
		{"part above total", "500", "400", "██████████ 100%"},
		{"zero total", "10", "0", "░░░░░░░░░░   0%"},
		{"negative total", "10", "-5", "░░░░░░░░░░   0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shareBar(d(tt.part), d(tt.total), 10))
		})
	}
}
