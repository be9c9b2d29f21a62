// Package order implements the purchase-order computation: turning
// inventory records into reorder lines for the orders sheet.
package order

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sheetflow/listener/internal/domain/sheet"
)

// Default field keys used by the reorder computation
const (
	DefaultStockField    = "stock"
	DefaultPurchaseField = "purchase"
)

// ReorderPolicy computes purchase quantities from stock levels.
// The quantity for a record is max(target - stock, 0).
type ReorderPolicy struct {
	Target        decimal.Decimal
	StockField    string
	PurchaseField string
}

// NewReorderPolicy creates a policy with the given reorder target and
// default field keys
func NewReorderPolicy(target int64) ReorderPolicy {
	return ReorderPolicy{
		Target:        decimal.NewFromInt(target),
		StockField:    DefaultStockField,
		PurchaseField: DefaultPurchaseField,
	}
}

// Quantity returns max(target - stock, 0)
func (p ReorderPolicy) Quantity(stock decimal.Decimal) decimal.Decimal {
	qty := p.Target.Sub(stock)
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}

// Line derives a purchase-order line from one inventory record: the source
// record minus its stock field, plus a computed purchase field. A missing,
// non-numeric, or fractional stock value yields a RecordError and no line;
// corrupted quantities are never propagated.
func (p ReorderPolicy) Line(index int, rec sheet.Record) (sheet.Record, int64, *sheet.RecordError) {
	fv, ok := rec.Get(p.StockField)
	if !ok || fv.Value == nil {
		err := sheet.NewRecordError(index, rec.ID, p.StockField, sheet.ErrCodeRequiredField,
			fmt.Sprintf("field '%s' is required", p.StockField))
		return sheet.Record{}, 0, &err
	}

	stock, perr := parseNumeric(fv.Value)
	if perr != nil {
		err := sheet.NewRecordError(index, rec.ID, p.StockField, sheet.ErrCodeNotANumber,
			"stock must be numeric").WithValue(fmt.Sprintf("%v", fv.Value))
		return sheet.Record{}, 0, &err
	}
	if !stock.IsInteger() {
		err := sheet.NewRecordError(index, rec.ID, p.StockField, sheet.ErrCodeNotWholeNumber,
			"stock must be a whole number").WithValue(stock.String())
		return sheet.Record{}, 0, &err
	}

	qty := p.Quantity(stock).IntPart()

	line := rec.Clone()
	line.ID = "" // inserted as a new record in the destination sheet
	line.Delete(p.StockField)
	line.SetField(p.PurchaseField, sheet.FieldValue{Value: qty, Valid: true})

	return line, qty, nil
}

// Plan computes purchase-order lines for a batch of inventory records.
// Lines with quantity zero are excluded; output order follows input order.
// Records with invalid stock values are excluded and reported in the
// returned collection.
func (p ReorderPolicy) Plan(records []sheet.Record) ([]sheet.Record, *sheet.ErrorCollection) {
	lines := make([]sheet.Record, 0, len(records))
	errs := sheet.NewErrorCollection(100)

	for i, rec := range records {
		line, qty, err := p.Line(i, rec)
		if err != nil {
			errs.Add(*err)
			continue
		}
		if qty > 0 {
			lines = append(lines, line)
		}
	}

	return lines, errs
}

// parseNumeric converts the loosely typed field values the platform
// delivers (JSON numbers, strings, native ints) into a decimal
func parseNumeric(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		if n == "" {
			return decimal.Zero, fmt.Errorf("empty numeric value")
		}
		return decimal.NewFromString(n)
	case decimal.Decimal:
		return n, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}
