package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetflow/listener/internal/domain/sheet"
)

func inventoryRecord(id string, stock any) sheet.Record {
	rec := sheet.NewRecord(id)
	rec.Set("item", "widget-"+id)
	if stock != nil {
		rec.Set("stock", stock)
	}
	return rec
}

func TestReorderPolicy_Quantity(t *testing.T) {
	policy := NewReorderPolicy(3)

	tests := []struct {
		name  string
		stock int64
		want  int64
	}{
		{"below target", 1, 2},
		{"zero stock", 0, 3},
		{"at target", 3, 0},
		{"above target", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Quantity(decimal.NewFromInt(tt.stock))
			assert.Equal(t, tt.want, got.IntPart())
			assert.False(t, got.IsNegative(), "quantity is never negative")
		})
	}
}

func TestReorderPolicy_Line_BelowTarget(t *testing.T) {
	policy := NewReorderPolicy(3)

	line, qty, err := policy.Line(0, inventoryRecord("rec-1", 1))
	require.Nil(t, err)
	assert.Equal(t, int64(2), qty)

	// stock is dropped, all other fields pass through
	_, hasStock := line.Get("stock")
	assert.False(t, hasStock)
	assert.Equal(t, "widget-rec-1", line.StringValue("item"))
	assert.Empty(t, line.ID)

	purchase, ok := line.Get("purchase")
	require.True(t, ok)
	assert.Equal(t, int64(2), purchase.Value)
	assert.True(t, purchase.Valid)
}

func TestReorderPolicy_Line_DoesNotMutateSource(t *testing.T) {
	policy := NewReorderPolicy(3)
	src := inventoryRecord("rec-1", 1)

	_, _, err := policy.Line(0, src)
	require.Nil(t, err)

	_, hasStock := src.Get("stock")
	assert.True(t, hasStock)
	_, hasPurchase := src.Get("purchase")
	assert.False(t, hasPurchase)
}

func TestReorderPolicy_Line_InvalidStock(t *testing.T) {
	policy := NewReorderPolicy(3)

	tests := []struct {
		name     string
		stock    any
		wantCode string
	}{
		{"missing", nil, sheet.ErrCodeRequiredField},
		{"non-numeric string", "plenty", sheet.ErrCodeNotANumber},
		{"empty string", "", sheet.ErrCodeNotANumber},
		{"boolean", true, sheet.ErrCodeNotANumber},
		{"fractional", 2.5, sheet.ErrCodeNotWholeNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := policy.Line(4, inventoryRecord("rec-4", tt.stock))
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, 4, err.Index)
			assert.Equal(t, "stock", err.Field)
		})
	}
}

func TestReorderPolicy_Line_AcceptsPlatformNumericTypes(t *testing.T) {
	policy := NewReorderPolicy(3)

	for _, stock := range []any{1, int64(1), float64(1), json.Number("1"), "1"} {
		_, qty, err := policy.Line(0, inventoryRecord("rec-1", stock))
		require.Nil(t, err, "stock %T", stock)
		assert.Equal(t, int64(2), qty)
	}
}

func TestReorderPolicy_Plan_FiltersAndOrders(t *testing.T) {
	policy := NewReorderPolicy(3)

	records := []sheet.Record{
		inventoryRecord("rec-1", 1), // qty 2, included
		inventoryRecord("rec-2", 5), // qty 0, excluded
		inventoryRecord("rec-3", 0), // qty 3, included
		inventoryRecord("rec-4", 3), // qty 0, boundary: excluded
	}

	lines, errs := policy.Plan(records)

	assert.False(t, errs.HasErrors())
	require.Len(t, lines, 2)
	assert.Equal(t, "widget-rec-1", lines[0].StringValue("item"))
	assert.Equal(t, "widget-rec-3", lines[1].StringValue("item"))
}

func TestReorderPolicy_Plan_ReportsBadRecordsAndKeepsGoing(t *testing.T) {
	policy := NewReorderPolicy(3)

	records := []sheet.Record{
		inventoryRecord("rec-1", "lots"),
		inventoryRecord("rec-2", 2),
	}

	lines, errs := policy.Plan(records)

	require.Len(t, lines, 1)
	assert.Equal(t, "widget-rec-2", lines[0].StringValue("item"))
	require.True(t, errs.HasErrors())
	assert.Equal(t, sheet.ErrCodeNotANumber, errs.Errors()[0].Code)
	assert.Equal(t, 0, errs.Errors()[0].Index)
}
