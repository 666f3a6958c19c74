package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stock-keeping unit.
// Quantity and AverageCost are only written by stock receipts and sales;
// the product endpoints never touch them directly.
type Product struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU   string    `gorm:"column:sku;uniqueIndex;not null"`
	Name  string    `gorm:"index;not null"`
	Brand string    `gorm:"not null;default:''"`
	Model string    `gorm:"not null;default:''"`
	Size  string    `gorm:"not null;default:''"`
	Color string    `gorm:"not null;default:''"`
	// AverageCost is the weighted average unit cost of the units on hand.
	// Four decimal places keep repeated averaging from drifting off the cent.
	AverageCost  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity     int             `gorm:"not null"`
	ReorderLevel int             `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock reports whether the product has reached its reorder level.
func (p *Product) IsLowStock() bool { return p.Quantity <= p.ReorderLevel }

// StockReceipt is an immutable record of units received into inventory.
// BankTransactionID is set when the purchase was paid from a bank account.
type StockReceipt struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          int             `gorm:"not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Supplier          string          `gorm:"not null;default:''"`
	BankAccountID     *uuid.UUID      `gorm:"type:uuid"`
	BankTransactionID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	ReceivedAt        time.Time       `gorm:"not null;index"`
	CreatedAt         time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TotalCost is quantity × unit cost.
func (r *StockReceipt) TotalCost() decimal.Decimal {
	return r.UnitCost.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
