package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds.
const (
	MovementReceipt = "receipt"
	MovementSale    = "sale"
)

// StockMovement records every change to a product's quantity.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind           string    `gorm:"type:varchar(20);not null"`
	Delta          int       `gorm:"not null"` // positive = in, negative = out
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	Note           string
	ReferenceID    *uuid.UUID `gorm:"type:uuid"` // receipt or sale id
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
