package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptFilter defines filters for listing stock receipts.
type ReceiptFilter struct {
	ProductID *uuid.UUID
	Page      int
	Limit     int
}

type StockReceiptRepository interface {
	CreateTx(tx *gorm.DB, r *model.StockReceipt) error
	// LinkTransactionTx sets bank_transaction_id once; a second call is a no-op.
	LinkTransactionTx(tx *gorm.DB, id, bankTransactionID uuid.UUID) error
	List(ctx context.Context, filter ReceiptFilter) ([]model.StockReceipt, int64, error)
}

type stockReceiptRepo struct{ db *gorm.DB }

func NewStockReceiptRepository(db *gorm.DB) StockReceiptRepository {
	return &stockReceiptRepo{db: db}
}

func (r *stockReceiptRepo) CreateTx(tx *gorm.DB, rec *model.StockReceipt) error {
	return tx.Create(rec).Error
}

func (r *stockReceiptRepo) LinkTransactionTx(tx *gorm.DB, id, bankTransactionID uuid.UUID) error {
	return tx.Model(&model.StockReceipt{}).
		Where("id = ? AND bank_transaction_id IS NULL", id).
		Update("bank_transaction_id", bankTransactionID).Error
}

func (r *stockReceiptRepo) List(ctx context.Context, filter ReceiptFilter) ([]model.StockReceipt, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockReceipt{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)
	var receipts []model.StockReceipt
	err := q.Preload("Product").
		Order("received_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&receipts).Error
	return receipts, total, err
}

// normalizePage clamps page/limit to sane bounds.
func normalizePage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > max {
		limit = def
	}
	return page, limit
}
