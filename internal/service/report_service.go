package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/infra"
	"backoffice/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardCacheKey = "report:dashboard"
	dashboardCacheTTL = time.Minute
)

// ReportService is read-only. Empty tables aggregate to zero.
type ReportService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	// DailySummary renders today's figures as an email; used by the scheduler.
	DailySummary(ctx context.Context) (subject, body string, err error)
}

type reportService struct {
	products   repository.ProductRepository
	sales      repository.SaleRepository
	historical repository.HistoricalSaleRepository
	bank       repository.BankRepository
	drawings   repository.DrawingRepository
	cache      *infra.Cache
	currency   string
	business   string
	now        func() time.Time
}

func NewReportService(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	historical repository.HistoricalSaleRepository,
	bank repository.BankRepository,
	drawings repository.DrawingRepository,
	cache *infra.Cache,
	currency, business string,
) ReportService {
	return &reportService{
		products:   products,
		sales:      sales,
		historical: historical,
		bank:       bank,
		drawings:   drawings,
		cache:      cache,
		currency:   currency,
		business:   business,
		now:        time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var cached dto.DashboardResponse
	if s.cache.GetJSON(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	inv, err := s.products.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory totals: %w", err)
	}
	live, err := s.sales.Totals(ctx, repository.SaleFilter{})
	if err != nil {
		return nil, fmt.Errorf("sale totals: %w", err)
	}
	hist, err := s.historical.Totals(ctx, repository.HistoricalSaleFilter{})
	if err != nil {
		return nil, fmt.Errorf("historical totals: %w", err)
	}
	accounts, err := s.bank.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("bank accounts: %w", err)
	}
	drawn, err := s.drawings.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("drawings total: %w", err)
	}
	low, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	resp := &dto.DashboardResponse{
		TotalProducts:   inv.Products,
		TotalStock:      inv.Stock,
		InventoryValue:  inv.Value.Round(2),
		LiveSales:       salesTotals(live),
		HistoricalSales: salesTotals(hist),
		TotalDrawings:   drawn,
		BankAccounts:    make([]dto.BankAccountResponse, len(accounts)),
		LowStock:        make([]dto.LowStockItem, len(low)),
		GeneratedAt:     s.now().UTC().Format(time.RFC3339),
	}
	resp.CombinedSales = dto.SalesTotals{
		Count:   live.Count + hist.Count,
		Revenue: resp.LiveSales.Revenue.Add(resp.HistoricalSales.Revenue),
		Profit:  resp.LiveSales.Profit.Add(resp.HistoricalSales.Profit),
	}

	resp.TotalBankBalance = decimal.Zero
	for i, a := range accounts {
		resp.BankAccounts[i] = dto.BankAccountResponse{
			ID:             a.ID.String(),
			Name:           a.Name,
			Balance:        a.Balance,
			BalanceDisplay: FormatMoney(a.Balance, s.currency),
		}
		resp.TotalBankBalance = resp.TotalBankBalance.Add(a.Balance)
	}
	for i, p := range low {
		resp.LowStock[i] = dto.LowStockItem{
			ProductID:    p.ID.String(),
			SKU:          p.SKU,
			Name:         p.Name,
			Quantity:     p.Quantity,
			ReorderLevel: p.ReorderLevel,
		}
	}
	resp.Display = map[string]string{
		"inventory_value":    FormatMoney(resp.InventoryValue, s.currency),
		"combined_revenue":   FormatMoney(resp.CombinedSales.Revenue, s.currency),
		"combined_profit":    FormatMoney(resp.CombinedSales.Profit, s.currency),
		"total_bank_balance": FormatMoney(resp.TotalBankBalance, s.currency),
		"total_drawings":     FormatMoney(resp.TotalDrawings, s.currency),
	}

	s.cache.SetJSON(ctx, dashboardCacheKey, resp, dashboardCacheTTL)
	return resp, nil
}

func (s *reportService) DailySummary(ctx context.Context) (string, string, error) {
	today := s.now().UTC().Format(dateLayout)
	day, err := s.sales.Totals(ctx, repository.SaleFilter{From: today, To: today})
	if err != nil {
		return "", "", fmt.Errorf("today's sales: %w", err)
	}
	d, err := s.Dashboard(ctx)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s daily summary for %s\n\n", s.business, today)
	fmt.Fprintf(&b, "Sales today: %d, revenue %s, profit %s\n",
		day.Count, FormatMoney(day.Revenue, s.currency), FormatMoney(day.Profit, s.currency))
	fmt.Fprintf(&b, "Inventory: %d units across %d products, valued at %s\n",
		d.TotalStock, d.TotalProducts, d.Display["inventory_value"])
	fmt.Fprintf(&b, "Bank balance: %s\n", d.Display["total_bank_balance"])
	fmt.Fprintf(&b, "Owner drawings to date: %s\n", d.Display["total_drawings"])
	if len(d.LowStock) > 0 {
		b.WriteString("\nLow stock:\n")
		for _, item := range d.LowStock {
			fmt.Fprintf(&b, "  %s %s: %d (reorder at %d)\n", item.SKU, item.Name, item.Quantity, item.ReorderLevel)
		}
	}

	subject := fmt.Sprintf("%s: daily summary %s", s.business, today)
	return subject, b.String(), nil
}

func salesTotals(t repository.SaleTotals) dto.SalesTotals {
	return dto.SalesTotals{Count: t.Count, Revenue: t.Revenue.Round(2), Profit: t.Profit.Round(2)}
}
