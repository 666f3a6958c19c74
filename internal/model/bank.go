package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Ledger categories.
const (
	CategorySale         = "sale"
	CategoryInventory    = "inventory"
	CategoryExpense      = "expense"
	CategoryOwnerDraw    = "owner_draw"
	CategoryOwnerCapital = "owner_capital"
	CategoryTransfer     = "transfer"
)

// Categories lists every accepted ledger category.
var Categories = []string{
	CategorySale, CategoryInventory, CategoryExpense,
	CategoryOwnerDraw, CategoryOwnerCapital, CategoryTransfer,
}

// BankAccount holds a running balance that only ever changes when a
// BankTransaction is posted against it.
type BankAccount struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BankTransaction is an immutable ledger entry. Entries are never updated or
// deleted; a mistaken entry is cancelled by posting its reversal, which points
// back at it through ReversalOfID.
type BankTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BankAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Direction     string          `gorm:"type:varchar(3);not null"`
	Category      string          `gorm:"type:varchar(20);not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Description   string          `gorm:"not null"`
	Reference     *string
	ReversalOfID  *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	OccurredAt    time.Time  `gorm:"not null;index"`
	CreatedAt     time.Time

	BankAccount *BankAccount `gorm:"foreignKey:BankAccountID"`
}

// SignedAmount is +Amount for "in" entries and -Amount for "out" entries.
func (t *BankTransaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionOut {
		return t.Amount.Neg()
	}
	return t.Amount
}

// OwnerDrawing is money taken out of the business by the owner. It is linked
// to exactly one ledger entry once posted.
type OwnerDrawing struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Amount            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Description       string          `gorm:"not null"`
	Reference         *string
	BankAccountID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	BankTransactionID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	DrawnAt           time.Time  `gorm:"not null"`
	CreatedAt         time.Time

	BankAccount *BankAccount `gorm:"foreignKey:BankAccountID"`
}
