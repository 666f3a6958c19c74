package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordSaleRequest struct {
	ProductID     string          `json:"product_id"     validate:"required,uuid"`
	Quantity      int             `json:"quantity"       validate:"required,gt=0"`
	SellingPrice  decimal.Decimal `json:"selling_price"  validate:"min=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash transfer"`
	// BankAccountID is required when PaymentMethod is "transfer".
	BankAccountID *string `json:"bank_account_id" validate:"omitempty,uuid"`
	Reference     *string `json:"reference"       validate:"omitempty,max=100"`
}

type SaleFilter struct {
	ProductID     string `form:"product_id"     validate:"omitempty,uuid"`
	PaymentMethod string `form:"payment_method" validate:"omitempty,oneof=cash transfer"`
	From          string `form:"from"` // YYYY-MM-DD, inclusive
	To            string `form:"to"`   // YYYY-MM-DD, inclusive
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int             `json:"quantity"`
	CostAtSale        decimal.Decimal `json:"cost_at_sale"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	Revenue           decimal.Decimal `json:"revenue"`
	Profit            decimal.Decimal `json:"profit"`
	PaymentMethod     string          `json:"payment_method"`
	BankAccountID     *string         `json:"bank_account_id"`
	BankTransactionID *string         `json:"bank_transaction_id"`
	Reference         *string         `json:"reference"`
	CreatedAt         string          `json:"created_at"`
	// RemainingQuantity is the product quantity right after this sale.
	RemainingQuantity *int `json:"remaining_quantity,omitempty"`
}

type SaleListResponse struct {
	Data    []SaleResponse  `json:"data"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}
