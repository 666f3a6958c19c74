package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter defines filters for listing ledger entries.
type TransactionFilter struct {
	BankAccountID *uuid.UUID
	Category      string
	Direction     string
	Page          int
	Limit         int
}

// LedgerSums are the in/out totals of an account's entries.
type LedgerSums struct {
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
}

// BankRepository covers bank accounts and their ledger.
// Ledger entries have no update or delete methods.
type BankRepository interface {
	CreateAccountTx(tx *gorm.DB, a *model.BankAccount) error
	FindAccountByID(ctx context.Context, id uuid.UUID) (*model.BankAccount, error)
	FindAccountByName(ctx context.Context, name string) (*model.BankAccount, error)
	ListAccounts(ctx context.Context) ([]model.BankAccount, error)

	CreateTransactionTx(tx *gorm.DB, t *model.BankTransaction) error
	// ApplyBalanceTx adds signed to the account balance atomically.
	// Returns gorm.ErrRecordNotFound when the account does not exist.
	ApplyBalanceTx(tx *gorm.DB, accountID uuid.UUID, signed decimal.Decimal) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.BankTransaction, error)
	FindTransactionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BankTransaction, error)
	HasReversalTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.BankTransaction, int64, error)
	RecentTransactions(ctx context.Context, limit int) ([]model.BankTransaction, error)
	SumLedger(ctx context.Context, accountID uuid.UUID) (LedgerSums, error)

	DB() *gorm.DB
}

type bankRepo struct{ db *gorm.DB }

func NewBankRepository(db *gorm.DB) BankRepository { return &bankRepo{db: db} }

func (r *bankRepo) DB() *gorm.DB { return r.db }

// ── Accounts ─────────────────────────────────────────────────────────────────

func (r *bankRepo) CreateAccountTx(tx *gorm.DB, a *model.BankAccount) error {
	return tx.Create(a).Error
}

func (r *bankRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*model.BankAccount, error) {
	var a model.BankAccount
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *bankRepo) FindAccountByName(ctx context.Context, name string) (*model.BankAccount, error) {
	var a model.BankAccount
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error
	return &a, err
}

func (r *bankRepo) ListAccounts(ctx context.Context) ([]model.BankAccount, error) {
	var accounts []model.BankAccount
	err := r.db.WithContext(ctx).Order("name ASC").Find(&accounts).Error
	return accounts, err
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func (r *bankRepo) CreateTransactionTx(tx *gorm.DB, t *model.BankTransaction) error {
	return tx.Create(t).Error
}

func (r *bankRepo) ApplyBalanceTx(tx *gorm.DB, accountID uuid.UUID, signed decimal.Decimal) error {
	res := tx.Model(&model.BankAccount{}).Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", signed))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bankRepo) FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.BankTransaction, error) {
	var t model.BankTransaction
	err := r.db.WithContext(ctx).Preload("BankAccount").First(&t, "id = ?", id).Error
	return &t, err
}

func (r *bankRepo) FindTransactionForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BankTransaction, error) {
	var t model.BankTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *bankRepo) HasReversalTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.BankTransaction{}).Where("reversal_of_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *bankRepo) ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.BankTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.BankTransaction{})
	if filter.BankAccountID != nil {
		q = q.Where("bank_account_id = ?", *filter.BankAccountID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Direction != "" {
		q = q.Where("direction = ?", filter.Direction)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)
	var txns []model.BankTransaction
	err := q.Preload("BankAccount").
		Order("occurred_at DESC, created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&txns).Error
	return txns, total, err
}

func (r *bankRepo) RecentTransactions(ctx context.Context, limit int) ([]model.BankTransaction, error) {
	var txns []model.BankTransaction
	err := r.db.WithContext(ctx).Preload("BankAccount").
		Order("occurred_at DESC, created_at DESC").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

func (r *bankRepo) SumLedger(ctx context.Context, accountID uuid.UUID) (LedgerSums, error) {
	var s LedgerSums
	err := r.db.WithContext(ctx).Model(&model.BankTransaction{}).
		Where("bank_account_id = ?", accountID).
		Select("COALESCE(SUM(CASE WHEN direction = 'in' THEN amount ELSE 0 END), 0) AS total_in, " +
			"COALESCE(SUM(CASE WHEN direction = 'out' THEN amount ELSE 0 END), 0) AS total_out").
		Scan(&s).Error
	return s, err
}
