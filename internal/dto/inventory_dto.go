package dto

import "github.com/shopspring/decimal"

type ReceiveStockRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"  validate:"min=0"`
	Supplier  string          `json:"supplier"   validate:"max=200"`
	// BankAccountID, when set, pays for the receipt out of that account.
	BankAccountID *string `json:"bank_account_id" validate:"omitempty,uuid"`
	// ReceivedAt is RFC 3339; defaults to now.
	ReceivedAt *string `json:"received_at"`
}

type StockReceiptResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Supplier          string          `json:"supplier"`
	BankAccountID     *string         `json:"bank_account_id"`
	BankTransactionID *string         `json:"bank_transaction_id"`
	ReceivedAt        string          `json:"received_at"`
	// Product state after the receipt was applied.
	NewQuantity    int             `json:"new_quantity"`
	NewAverageCost decimal.Decimal `json:"new_average_cost"`
}

type ReceiptFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ReceiptListResponse struct {
	Data  []StockReceiptResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

type MovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"       validate:"omitempty,oneof=receipt sale"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name,omitempty"`
	Kind           string  `json:"kind"`
	Delta          int     `json:"delta"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	Note           string  `json:"note"`
	ReferenceID    *string `json:"reference_id"`
	CreatedAt      string  `json:"created_at"`
}

type MovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
