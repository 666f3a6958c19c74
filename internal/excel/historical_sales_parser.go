package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// HistoricalSaleRow is one parsed line of a legacy sales sheet.
type HistoricalSaleRow struct {
	SoldOn       time.Time
	SKU          string
	ProductName  string
	Quantity     int
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	Reference    *string
}

var headerAliases = map[string]string{
	"date":          "sold_on",
	"sold on":       "sold_on",
	"sale date":     "sold_on",
	"sku":           "sku",
	"code":          "sku",
	"product":       "product_name",
	"product name":  "product_name",
	"item":          "product_name",
	"quantity":      "quantity",
	"qty":           "quantity",
	"unit cost":     "unit_cost",
	"cost":          "unit_cost",
	"cost price":    "unit_cost",
	"selling price": "selling_price",
	"sell price":    "selling_price",
	"price":         "selling_price",
	"reference":     "reference",
	"ref":           "reference",
}

var requiredColumns = []string{"sold_on", "product_name", "quantity", "unit_cost", "selling_price"}

// dateLayouts are tried in order on text cells.
var dateLayouts = []string{"2006-01-02", "01-02-06", "01/02/2006", "1/2/2006", "2006/01/02"}

// ParseHistoricalSales reads the first sheet of an .xlsx workbook. The first
// row is the header; blank product rows are skipped. Any bad cell fails the
// whole file.
func ParseHistoricalSales(reader io.Reader) ([]HistoricalSaleRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	result := make([]HistoricalSaleRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		line := index + 1
		name := strings.TrimSpace(readCell(cells, colMap["product_name"]))
		if name == "" {
			continue
		}

		soldOn, err := parseDate(readCell(cells, colMap["sold_on"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid date: %w", line, err)
		}
		qty, err := parseInt(readCell(cells, colMap["quantity"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid quantity: %w", line, err)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("row %d invalid quantity: must be greater than zero", line)
		}
		cost, err := parseAmount(readCell(cells, colMap["unit_cost"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid unit cost: %w", line, err)
		}
		price, err := parseAmount(readCell(cells, colMap["selling_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid selling price: %w", line, err)
		}

		row := HistoricalSaleRow{
			SoldOn:       soldOn,
			ProductName:  name,
			Quantity:     qty,
			UnitCost:     cost,
			SellingPrice: price,
		}
		if idx, ok := colMap["sku"]; ok {
			row.SKU = strings.TrimSpace(readCell(cells, idx))
		}
		if idx, ok := colMap["reference"]; ok {
			if ref := strings.TrimSpace(readCell(cells, idx)); ref != "" {
				row.Reference = &ref
			}
		}
		result = append(result, row)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	return strings.Join(strings.Fields(value), " ")
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseInt(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	asFloat, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.Mod(asFloat, 1) != 0 {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(asFloat), nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "$")
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d.Round(2), nil
}

// parseDate accepts text dates or an Excel serial day number.
func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("value is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
