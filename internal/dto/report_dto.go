package dto

import "github.com/shopspring/decimal"

// SalesTotals is revenue and profit over a set of sales.
type SalesTotals struct {
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type LowStockItem struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}

// DashboardResponse is the read-only business overview.
type DashboardResponse struct {
	TotalProducts    int64                 `json:"total_products"`
	TotalStock       int64                 `json:"total_stock"`
	InventoryValue   decimal.Decimal       `json:"inventory_value"`
	LiveSales        SalesTotals           `json:"live_sales"`
	HistoricalSales  SalesTotals           `json:"historical_sales"`
	CombinedSales    SalesTotals           `json:"combined_sales"`
	BankAccounts     []BankAccountResponse `json:"bank_accounts"`
	TotalBankBalance decimal.Decimal       `json:"total_bank_balance"`
	TotalDrawings    decimal.Decimal       `json:"total_drawings"`
	LowStock         []LowStockItem        `json:"low_stock"`
	// Display holds currency-formatted copies of the headline amounts.
	Display     map[string]string `json:"display"`
	GeneratedAt string            `json:"generated_at"`
}
