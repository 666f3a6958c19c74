package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleTotals is revenue and profit over a set of sale rows.
type SaleTotals struct {
	Count   int64
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

// SaleFilter defines filters for listing sales. From and To are YYYY-MM-DD.
type SaleFilter struct {
	ProductID     *uuid.UUID
	PaymentMethod string
	From          string
	To            string
	Page          int
	Limit         int
}

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	LinkTransactionTx(tx *gorm.DB, id, bankTransactionID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	Totals(ctx context.Context, filter SaleFilter) (SaleTotals, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) LinkTransactionTx(tx *gorm.DB, id, bankTransactionID uuid.UUID) error {
	return tx.Model(&model.Sale{}).
		Where("id = ? AND bank_transaction_id IS NULL", id).
		Update("bank_transaction_id", bankTransactionID).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Product").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) filtered(ctx context.Context, filter SaleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}
	// From and To are calendar days in UTC, whatever the session TimeZone.
	if filter.From != "" {
		q = q.Where("(created_at AT TIME ZONE 'UTC')::date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("(created_at AT TIME ZONE 'UTC')::date <= ?", filter.To)
	}
	return q
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	var total int64
	q := r.filtered(ctx, filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)
	var sales []model.Sale
	err := q.Preload("Product").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) Totals(ctx context.Context, filter SaleFilter) (SaleTotals, error) {
	var t SaleTotals
	err := r.filtered(ctx, filter).
		Select("COUNT(*) AS count, " +
			"COALESCE(SUM(quantity * selling_price), 0) AS revenue, " +
			"COALESCE(SUM(profit), 0) AS profit").
		Scan(&t).Error
	return t, err
}
