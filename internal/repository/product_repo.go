package repository

import (
	"context"

	"backoffice/internal/dto"
	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryTotals aggregates the whole product catalog.
type InventoryTotals struct {
	Products int64
	Stock    int64
	Value    decimal.Decimal
}

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	Totals(ctx context.Context) (InventoryTotals, error)

	// Used inside transactions, callers must pass the tx instance

	// FindByIDForUpdateTx reads the product with SELECT ... FOR UPDATE so
	// concurrent receipts and sales on the same product serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// SetStockTx writes quantity and average cost together after a receipt.
	SetStockTx(tx *gorm.DB, id uuid.UUID, quantity int, averageCost decimal.Decimal) error
	// UpdateStockTx applies delta to quantity, never going below zero.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	UpdateTx(tx *gorm.DB, p *model.Product) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ? OR brand ILIKE ?", like, like, like)
	}
	if filter.LowStock {
		q = q.Where("quantity <= reorder_level")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("quantity <= reorder_level").
		Order("quantity ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Totals(ctx context.Context) (InventoryTotals, error) {
	var t InventoryTotals
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("COUNT(*) AS products, " +
			"COALESCE(SUM(quantity), 0) AS stock, " +
			"COALESCE(SUM(quantity * average_cost), 0) AS value").
		Scan(&t).Error
	return t, err
}

func (r *productRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, quantity int, averageCost decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"quantity":     quantity,
		"average_cost": averageCost,
	}).Error
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("GREATEST(quantity + ?, 0)", delta)).Error
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	// Select pins the descriptive columns; stock fields are owned by the ledger paths.
	return tx.Model(p).
		Select("name", "brand", "model", "size", "color", "selling_price", "reorder_level", "updated_at").
		Updates(p).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
