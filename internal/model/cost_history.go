package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cost history reasons.
const (
	CostReasonReceipt = "stock_receipt"
	CostReasonManual  = "manual"
)

// CostHistory is an append-only log of average cost and selling price changes.
type CostHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostBefore  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CostAfter   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	PriceBefore decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceAfter  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Reason      string          `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
}

// TableName overrides GORM's default pluralization (cost_histories → cost_history).
func (CostHistory) TableName() string { return "cost_history" }
