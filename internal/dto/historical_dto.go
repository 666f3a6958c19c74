package dto

import "github.com/shopspring/decimal"

type CreateHistoricalSaleRequest struct {
	SoldOn       string          `json:"sold_on"       validate:"required,datetime=2006-01-02"`
	SKU          string          `json:"sku"           validate:"max=64"`
	ProductName  string          `json:"product_name"  validate:"required,max=200"`
	Quantity     int             `json:"quantity"      validate:"required,gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost"     validate:"min=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"min=0"`
	Reference    *string         `json:"reference"     validate:"omitempty,max=100"`
}

type HistoricalSaleFilter struct {
	From  string `form:"from"` // YYYY-MM-DD, inclusive
	To    string `form:"to"`   // YYYY-MM-DD, inclusive
	SKU   string `form:"sku"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type HistoricalSaleResponse struct {
	ID           string          `json:"id"`
	SoldOn       string          `json:"sold_on"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"`
	Reference    *string         `json:"reference"`
}

// HistoricalSaleListResponse carries revenue and profit over the whole filter,
// not just the returned page.
type HistoricalSaleListResponse struct {
	Data    []HistoricalSaleResponse `json:"data"`
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
	Revenue decimal.Decimal          `json:"revenue"`
	Profit  decimal.Decimal          `json:"profit"`
}

type ImportHistoricalSalesResponse struct {
	Imported int             `json:"imported"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
}
