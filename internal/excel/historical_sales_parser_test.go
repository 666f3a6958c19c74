package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseHistoricalSales_HeaderAliases(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Sale Date", "SKU", "Product Name", "Qty", "Cost", "Selling Price", "Ref"},
		{"2023-11-04", "HLM-01", "Shoei GT-Air", 2, "120.00", "199.99", "INV-9"},
		{"", "", "", "", "", "", ""},
		{"11/05/2023", "", "Visor", "1", "$10", "25", ""},
	})

	rows, err := ParseHistoricalSales(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2023, 11, 4, 0, 0, 0, 0, time.UTC), rows[0].SoldOn)
	assert.Equal(t, "HLM-01", rows[0].SKU)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.True(t, rows[0].SellingPrice.Equal(decimal.RequireFromString("199.99")))
	require.NotNil(t, rows[0].Reference)
	assert.Equal(t, "INV-9", *rows[0].Reference)

	assert.Equal(t, "Visor", rows[1].ProductName)
	assert.True(t, rows[1].UnitCost.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, rows[1].Reference)
}

func TestParseHistoricalSales_MissingColumn(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Date", "Product", "Qty", "Cost"},
		{"2023-11-04", "Helmet", 1, 10},
	})
	_, err := ParseHistoricalSales(buf)
	assert.ErrorContains(t, err, "selling_price")
}

func TestParseHistoricalSales_BadRowFailsWholeFile(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Date", "Product", "Qty", "Cost", "Price"},
		{"2023-11-04", "Helmet", 1, 10, 20},
		{"2023-11-05", "Gloves", 1.5, 10, 20},
	})
	_, err := ParseHistoricalSales(buf)
	assert.ErrorContains(t, err, "row 3")
}

func TestParseDate_ExcelSerial(t *testing.T) {
	got, err := parseDate("45234")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 11, 4, 0, 0, 0, 0, time.UTC), got)
}
