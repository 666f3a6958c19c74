package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) reportService() ReportService {
	svc := NewReportService(f.products, f.sales, f.historical, f.bankRepo, f.drawings, nil, "USD", "Helmet Shop")
	svc.(*reportService).now = func() time.Time { return time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboard_EmptyIsZero(t *testing.T) {
	f := newFixture()
	dash, err := f.reportService().Dashboard(context.Background())
	require.NoError(t, err)

	assert.Zero(t, dash.TotalProducts)
	assert.Zero(t, dash.TotalStock)
	assert.True(t, dash.InventoryValue.IsZero())
	assert.True(t, dash.CombinedSales.Revenue.IsZero())
	assert.True(t, dash.CombinedSales.Profit.IsZero())
	assert.True(t, dash.TotalBankBalance.IsZero())
	assert.True(t, dash.TotalDrawings.IsZero())
	assert.Empty(t, dash.BankAccounts)
	assert.Empty(t, dash.LowStock)
	assert.Equal(t, "$0.00", dash.Display["inventory_value"])
	assert.Equal(t, "2026-03-14T18:00:00Z", dash.GeneratedAt)
}

func TestDashboard_CombinesLiveAndHistorical(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	acct := f.bankRepo.addAccount("Main")
	p := f.products.add("HLM-30", 0, "0", "9")
	receive(t, f, p.ID.String(), 10, "5", nil)
	receive(t, f, p.ID.String(), 10, "7", nil)

	sales := f.saleService(OversellClamp, nil)
	_, err := sales.RecordSale(ctx, dto.RecordSaleRequest{
		ProductID: p.ID.String(), Quantity: 5, SellingPrice: d("9"),
		PaymentMethod: model.PaymentTransfer, BankAccountID: strPtr(acct.ID.String()),
	})
	require.NoError(t, err)

	hist := NewHistoricalSaleService(f.historical, nil)
	_, err = hist.Create(ctx, dto.CreateHistoricalSaleRequest{
		SoldOn: "2022-06-01", ProductName: "Old visor", Quantity: 4, UnitCost: d("2"), SellingPrice: d("5"),
	})
	require.NoError(t, err)

	drawings := NewDrawingService(f.drawings, f.bank, nil)
	_, err = drawings.RecordDrawing(ctx, dto.RecordDrawingRequest{
		BankAccountID: acct.ID.String(), Amount: d("20"), Description: "lunch",
	})
	require.NoError(t, err)

	dash, err := f.reportService().Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), dash.TotalProducts)
	assert.Equal(t, int64(15), dash.TotalStock)
	assert.True(t, dash.InventoryValue.Equal(d("90")))

	assert.True(t, dash.LiveSales.Revenue.Equal(d("45")))
	assert.True(t, dash.LiveSales.Profit.Equal(d("15")))
	assert.True(t, dash.HistoricalSales.Revenue.Equal(d("20")))
	assert.True(t, dash.HistoricalSales.Profit.Equal(d("12")))
	assert.Equal(t, int64(2), dash.CombinedSales.Count)
	assert.True(t, dash.CombinedSales.Revenue.Equal(d("65")))
	assert.True(t, dash.CombinedSales.Profit.Equal(d("27")))

	assert.True(t, dash.TotalBankBalance.Equal(d("25")))
	assert.True(t, dash.TotalDrawings.Equal(d("20")))
	assert.Equal(t, "$65.00", dash.Display["combined_revenue"])
}

func TestDailySummary(t *testing.T) {
	f := newFixture()
	f.products.add("HLM-31", 2, "10", "20")

	subject, body, err := f.reportService().DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Helmet Shop: daily summary 2026-03-14", subject)
	assert.Contains(t, body, "Sales today: 0")
	assert.Contains(t, body, "valued at $20.00")
	assert.Contains(t, body, "Low stock:")
	assert.Contains(t, body, "HLM-31")
}

func TestDailySummary_DayIsUTC(t *testing.T) {
	f := newFixture()
	p := f.products.add("HLM-32", 10, "10", "20")
	// Evening of the 14th in New York is already the 15th in UTC.
	svc := f.reportService()
	svc.(*reportService).now = func() time.Time {
		return time.Date(2026, 3, 14, 22, 30, 0, 0, time.FixedZone("EST", -5*3600))
	}
	for _, at := range []time.Time{
		time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC),
	} {
		id := uuid.New()
		f.sales.sales[id] = &model.Sale{
			ID: id, ProductID: p.ID, Quantity: 1, CostAtSale: d("10"), SellingPrice: d("20"),
			Profit: d("10"), PaymentMethod: model.PaymentCash, CreatedAt: at,
		}
	}

	subject, body, err := svc.DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Helmet Shop: daily summary 2026-03-15", subject)
	assert.Contains(t, body, "Sales today: 1, revenue $20.00")
}
