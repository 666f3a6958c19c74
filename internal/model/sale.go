package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod values accepted on a sale.
const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
)

// Sale is a stock issue. CostAtSale and Profit are written once, when the
// row is created, and never recomputed afterwards.
type Sale struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          int             `gorm:"not null"`
	CostAtSale        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Profit            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentMethod     string          `gorm:"type:varchar(10);not null"`
	BankAccountID     *uuid.UUID      `gorm:"type:uuid"`
	BankTransactionID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Reference         *string
	CreatedAt         time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Revenue is quantity × selling price.
func (s *Sale) Revenue() decimal.Decimal {
	return s.SellingPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// HistoricalSale is a sale recorded before the system went live. It feeds the
// combined reports and never touches products or bank accounts.
type HistoricalSale struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SoldOn       time.Time       `gorm:"type:date;not null;index"`
	SKU          string          `gorm:"column:sku;not null;default:''"`
	ProductName  string          `gorm:"not null"`
	Quantity     int             `gorm:"not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Profit       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Reference    *string
	CreatedAt    time.Time
}

// Revenue is quantity × selling price.
func (h *HistoricalSale) Revenue() decimal.Decimal {
	return h.SellingPrice.Mul(decimal.NewFromInt(int64(h.Quantity)))
}
