package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"backoffice/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func historyWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
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

func TestHistoricalCreate_ComputesProfit(t *testing.T) {
	f := newFixture()
	svc := NewHistoricalSaleService(f.historical, nil)

	resp, err := svc.Create(context.Background(), dto.CreateHistoricalSaleRequest{
		SoldOn:       "2021-12-24",
		SKU:          "HLM-OLD",
		ProductName:  "Arai RX-7",
		Quantity:     3,
		UnitCost:     d("310.50"),
		SellingPrice: d("499.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2021-12-24", resp.SoldOn)
	assert.True(t, resp.Revenue.Equal(d("1499.97")))
	assert.True(t, resp.Profit.Equal(d("568.47")))

	// Historical sales never touch stock or the bank.
	assert.Empty(t, f.products.products)
	assert.Empty(t, f.bankRepo.txns)
}

func TestHistoricalCreate_Validation(t *testing.T) {
	f := newFixture()
	svc := NewHistoricalSaleService(f.historical, nil)
	var verr *ValidationError

	_, err := svc.Create(context.Background(), dto.CreateHistoricalSaleRequest{SoldOn: "24/12/2021", ProductName: "x", Quantity: 1})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sold_on")

	_, err = svc.Create(context.Background(), dto.CreateHistoricalSaleRequest{SoldOn: "2021-12-24", ProductName: "x", Quantity: 0})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")
	assert.Empty(t, f.historical.rows)
}

func TestHistoricalImport(t *testing.T) {
	f := newFixture()
	svc := NewHistoricalSaleService(f.historical, nil)

	buf := historyWorkbook(t, [][]interface{}{
		{"Date", "SKU", "Product", "Qty", "Cost", "Price"},
		{"2023-01-05", "A1", "Helmet", 2, "100", "150"},
		{"2023-01-06", "B2", "Gloves", 1, "20", "35.50"},
	})
	resp, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Imported)
	assert.True(t, resp.Revenue.Equal(d("335.5")))
	assert.True(t, resp.Profit.Equal(d("115.5")))

	list, err := svc.List(context.Background(), dto.HistoricalSaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.True(t, list.Profit.Equal(d("115.5")))
}

func TestHistoricalImport_BadFileStoresNothing(t *testing.T) {
	f := newFixture()
	svc := NewHistoricalSaleService(f.historical, nil)

	buf := historyWorkbook(t, [][]interface{}{
		{"Date", "Product", "Qty", "Cost", "Price"},
		{"2023-01-05", "Helmet", 2, "100", "150"},
		{"not a date", "Gloves", 1, "20", "35"},
	})
	_, err := svc.Import(context.Background(), buf)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "file")
	assert.Empty(t, f.historical.rows)

	_, err = svc.Import(context.Background(), strings.NewReader("plain text"))
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.historical.rows)
}
