package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

// HistoricalSaleFilter defines filters for historical sales. From and To are YYYY-MM-DD.
type HistoricalSaleFilter struct {
	From  string
	To    string
	SKU   string
	Page  int
	Limit int
}

type HistoricalSaleRepository interface {
	Create(ctx context.Context, h *model.HistoricalSale) error
	// CreateBatchTx inserts rows in chunks inside the caller's transaction.
	CreateBatchTx(tx *gorm.DB, rows []model.HistoricalSale) error
	List(ctx context.Context, filter HistoricalSaleFilter) ([]model.HistoricalSale, int64, error)
	Totals(ctx context.Context, filter HistoricalSaleFilter) (SaleTotals, error)
	DB() *gorm.DB
}

type historicalSaleRepo struct{ db *gorm.DB }

func NewHistoricalSaleRepository(db *gorm.DB) HistoricalSaleRepository {
	return &historicalSaleRepo{db: db}
}

func (r *historicalSaleRepo) DB() *gorm.DB { return r.db }

func (r *historicalSaleRepo) Create(ctx context.Context, h *model.HistoricalSale) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historicalSaleRepo) CreateBatchTx(tx *gorm.DB, rows []model.HistoricalSale) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 200).Error
}

func (r *historicalSaleRepo) filtered(ctx context.Context, filter HistoricalSaleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.HistoricalSale{})
	if filter.From != "" {
		q = q.Where("sold_on >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("sold_on <= ?", filter.To)
	}
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	return q
}

func (r *historicalSaleRepo) List(ctx context.Context, filter HistoricalSaleFilter) ([]model.HistoricalSale, int64, error) {
	var total int64
	q := r.filtered(ctx, filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 50, 500)
	var rows []model.HistoricalSale
	err := q.Order("sold_on DESC, created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *historicalSaleRepo) Totals(ctx context.Context, filter HistoricalSaleFilter) (SaleTotals, error) {
	var t SaleTotals
	err := r.filtered(ctx, filter).
		Select("COUNT(*) AS count, " +
			"COALESCE(SUM(quantity * selling_price), 0) AS revenue, " +
			"COALESCE(SUM(profit), 0) AS profit").
		Scan(&t).Error
	return t, err
}
