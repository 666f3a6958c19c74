package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU          string          `json:"sku"           validate:"required,min=1,max=64"`
	Name         string          `json:"name"          validate:"required,min=1,max=200"`
	Brand        string          `json:"brand"         validate:"max=100"`
	Model        string          `json:"model"         validate:"max=100"`
	Size         string          `json:"size"          validate:"max=50"`
	Color        string          `json:"color"         validate:"max=50"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"min=0"`
	// ReorderLevel defaults to 5 when omitted.
	ReorderLevel *int `json:"reorder_level" validate:"omitempty,min=0"`
}

// UpdateProductRequest changes descriptive fields and the selling price.
// Quantity and average cost are not writable here.
type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=1,max=200"`
	Brand        *string          `json:"brand"         validate:"omitempty,max=100"`
	Model        *string          `json:"model"         validate:"omitempty,max=100"`
	Size         *string          `json:"size"          validate:"omitempty,max=50"`
	Color        *string          `json:"color"         validate:"omitempty,max=50"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search   string `form:"q"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Size         string          `json:"size"`
	Color        string          `json:"color"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	LowStock     bool            `json:"low_stock"`
	StockValue   decimal.Decimal `json:"stock_value"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// PriceLookupResponse is served by the public price endpoint.
type PriceLookupResponse struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Display      string          `json:"display"`
	InStock      int             `json:"in_stock"`
}

// CostHistoryItem is one row of GET /v1/products/:id/cost-history.
type CostHistoryItem struct {
	ID          string          `json:"id"`
	CostBefore  decimal.Decimal `json:"cost_before"`
	CostAfter   decimal.Decimal `json:"cost_after"`
	PriceBefore decimal.Decimal `json:"price_before"`
	PriceAfter  decimal.Decimal `json:"price_after"`
	Reason      string          `json:"reason"`
	CreatedAt   string          `json:"created_at"`
}

type CostHistoryListResponse struct {
	Data  []CostHistoryItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
