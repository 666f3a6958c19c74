package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DrawingRepository interface {
	CreateTx(tx *gorm.DB, d *model.OwnerDrawing) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OwnerDrawing, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.OwnerDrawing, error)
	LinkTransactionTx(tx *gorm.DB, id, bankTransactionID uuid.UUID) error
	List(ctx context.Context) ([]model.OwnerDrawing, error)
	Total(ctx context.Context) (decimal.Decimal, error)
	DB() *gorm.DB
}

type drawingRepo struct{ db *gorm.DB }

func NewDrawingRepository(db *gorm.DB) DrawingRepository { return &drawingRepo{db: db} }

func (r *drawingRepo) DB() *gorm.DB { return r.db }

func (r *drawingRepo) CreateTx(tx *gorm.DB, d *model.OwnerDrawing) error {
	return tx.Create(d).Error
}

func (r *drawingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OwnerDrawing, error) {
	var d model.OwnerDrawing
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *drawingRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.OwnerDrawing, error) {
	var d model.OwnerDrawing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *drawingRepo) LinkTransactionTx(tx *gorm.DB, id, bankTransactionID uuid.UUID) error {
	return tx.Model(&model.OwnerDrawing{}).
		Where("id = ? AND bank_transaction_id IS NULL", id).
		Update("bank_transaction_id", bankTransactionID).Error
}

func (r *drawingRepo) List(ctx context.Context) ([]model.OwnerDrawing, error) {
	var drawings []model.OwnerDrawing
	err := r.db.WithContext(ctx).Order("drawn_at DESC").Find(&drawings).Error
	return drawings, err
}

func (r *drawingRepo) Total(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.OwnerDrawing{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
