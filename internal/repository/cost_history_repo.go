package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CostHistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.CostHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.CostHistory, int64, error)
}

type costHistoryRepo struct{ db *gorm.DB }

func NewCostHistoryRepository(db *gorm.DB) CostHistoryRepository {
	return &costHistoryRepo{db: db}
}

func (r *costHistoryRepo) CreateTx(tx *gorm.DB, h *model.CostHistory) error {
	return tx.Create(h).Error
}

// ListByProduct returns paginated cost changes for one product,
// ordered newest-first (append-only table, so this reflects natural insert order).
func (r *costHistoryRepo) ListByProduct(
	ctx context.Context,
	productID uuid.UUID,
	page, limit int,
) ([]model.CostHistory, int64, error) {
	page, limit = normalizePage(page, limit, 50, 200)

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.CostHistory{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.CostHistory
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
