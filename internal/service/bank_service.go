package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/infra"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recentTransactionsLimit = 50

// LedgerEntry is one balance-changing event to be posted.
type LedgerEntry struct {
	AccountID    uuid.UUID
	Direction    string
	Category     string
	Amount       decimal.Decimal
	Description  string
	Reference    *string
	ReversalOfID *uuid.UUID
	OccurredAt   time.Time
}

// BankService owns every change to a bank account balance.
type BankService interface {
	CreateAccount(ctx context.Context, req dto.CreateBankAccountRequest) (*dto.BankAccountResponse, error)
	ListAccounts(ctx context.Context) ([]dto.BankAccountResponse, error)
	Reconcile(ctx context.Context, accountID uuid.UUID) (*dto.ReconciliationResponse, error)

	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*dto.BankTransactionResponse, error)
	ReverseTransaction(ctx context.Context, id uuid.UUID, req dto.ReverseTransactionRequest) (*dto.BankTransactionResponse, error)
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
	Dashboard(ctx context.Context) (*dto.BankDashboardResponse, error)

	// PostTx inserts the entry and moves the balance inside the caller's
	// transaction. Receipts, sales and drawings all post through here.
	PostTx(tx *gorm.DB, e LedgerEntry) (*model.BankTransaction, error)
	// RequireAccount fails with a bank_account_id ValidationError when the
	// account does not exist.
	RequireAccount(ctx context.Context, id uuid.UUID) error
}

type bankService struct {
	repo     repository.BankRepository
	cache    *infra.Cache
	currency string
}

func NewBankService(repo repository.BankRepository, cache *infra.Cache, currency string) BankService {
	return &bankService{repo: repo, cache: cache, currency: currency}
}

// ── Posting ──────────────────────────────────────────────────────────────────

func (s *bankService) PostTx(tx *gorm.DB, e LedgerEntry) (*model.BankTransaction, error) {
	if e.Direction != model.DirectionIn && e.Direction != model.DirectionOut {
		return nil, invalid("direction", "must be in or out")
	}
	if !slices.Contains(model.Categories, e.Category) {
		return nil, invalid("category", "unknown category")
	}
	if !e.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	txn := &model.BankTransaction{
		BankAccountID: e.AccountID,
		Direction:     e.Direction,
		Category:      e.Category,
		Amount:        e.Amount.Round(2),
		Description:   e.Description,
		Reference:     e.Reference,
		ReversalOfID:  e.ReversalOfID,
		OccurredAt:    e.OccurredAt,
	}
	if err := s.repo.ApplyBalanceTx(tx, e.AccountID, txn.SignedAmount()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("bank_account_id", "account not found")
		}
		return nil, fmt.Errorf("apply balance: %w", err)
	}
	if err := s.repo.CreateTransactionTx(tx, txn); err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	return txn, nil
}

func (s *bankService) RequireAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindAccountByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("bank_account_id", "account not found")
		}
		return err
	}
	return nil
}

// ── Accounts ─────────────────────────────────────────────────────────────────

// CreateAccount opens an account at zero and posts any opening balance as
// owner capital, so the balance always equals the ledger sum.
func (s *bankService) CreateAccount(ctx context.Context, req dto.CreateBankAccountRequest) (*dto.BankAccountResponse, error) {
	if req.OpeningBalance.IsNegative() {
		return nil, invalid("opening_balance", "must not be negative")
	}
	if err := checkCents("opening_balance", req.OpeningBalance); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindAccountByName(ctx, req.Name); err == nil {
		return nil, invalid("name", "already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account := &model.BankAccount{Name: req.Name, Balance: decimal.Zero}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateAccountTx(tx, account); err != nil {
			return err
		}
		if !req.OpeningBalance.IsPositive() {
			return nil
		}
		txn, err := s.PostTx(tx, LedgerEntry{
			AccountID:   account.ID,
			Direction:   model.DirectionIn,
			Category:    model.CategoryOwnerCapital,
			Amount:      req.OpeningBalance,
			Description: "Opening balance",
		})
		if err != nil {
			return err
		}
		account.Balance = txn.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, dashboardCacheKey)
	log.Info().Str("account_id", account.ID.String()).Str("opening", account.Balance.StringFixed(2)).Msg("bank account created")
	return s.accountToResponse(account), nil
}

func (s *bankService) ListAccounts(ctx context.Context) ([]dto.BankAccountResponse, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.BankAccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = *s.accountToResponse(&accounts[i])
	}
	return resp, nil
}

func (s *bankService) Reconcile(ctx context.Context, accountID uuid.UUID) (*dto.ReconciliationResponse, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, notFound(err)
	}
	sums, err := s.repo.SumLedger(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ledger := sums.TotalIn.Sub(sums.TotalOut)
	diff := account.Balance.Sub(ledger)
	if !diff.IsZero() {
		log.Warn().Str("account_id", accountID.String()).Str("difference", diff.StringFixed(2)).Msg("bank account out of balance")
	}
	return &dto.ReconciliationResponse{
		AccountID:  account.ID.String(),
		Balance:    account.Balance,
		TotalIn:    sums.TotalIn,
		TotalOut:   sums.TotalOut,
		LedgerSum:  ledger,
		Difference: diff,
		Balanced:   diff.IsZero(),
	}, nil
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (s *bankService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*dto.BankTransactionResponse, error) {
	accountID, err := parseID("bank_account_id", req.BankAccountID)
	if err != nil {
		return nil, err
	}
	occurredAt, err := parseTimestamp("occurred_at", req.OccurredAt)
	if err != nil {
		return nil, err
	}
	if err := checkCents("amount", req.Amount); err != nil {
		return nil, err
	}

	var txn *model.BankTransaction
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var postErr error
		txn, postErr = s.PostTx(tx, LedgerEntry{
			AccountID:   accountID,
			Direction:   req.Direction,
			Category:    req.Category,
			Amount:      req.Amount,
			Description: req.Description,
			Reference:   req.Reference,
			OccurredAt:  occurredAt,
		})
		return postErr
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, dashboardCacheKey)
	log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("direction", txn.Direction).
		Str("category", txn.Category).
		Str("amount", txn.Amount.StringFixed(2)).
		Msg("bank transaction recorded")
	return transactionToResponse(txn), nil
}

// ReverseTransaction cancels a ledger entry by posting its inverse. Entries
// are never edited or deleted. Each entry can be reversed once.
func (s *bankService) ReverseTransaction(ctx context.Context, id uuid.UUID, req dto.ReverseTransactionRequest) (*dto.BankTransactionResponse, error) {
	var reversal *model.BankTransaction
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orig, err := s.repo.FindTransactionForUpdateTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		if orig.ReversalOfID != nil {
			return ErrReversalOfReversal
		}
		reversed, err := s.repo.HasReversalTx(tx, id)
		if err != nil {
			return err
		}
		if reversed {
			return ErrAlreadyReversed
		}

		direction := model.DirectionIn
		if orig.Direction == model.DirectionIn {
			direction = model.DirectionOut
		}
		reversal, err = s.PostTx(tx, LedgerEntry{
			AccountID:    orig.BankAccountID,
			Direction:    direction,
			Category:     orig.Category,
			Amount:       orig.Amount,
			Description:  fmt.Sprintf("Reversal: %s (%s)", orig.Description, req.Reason),
			Reference:    orig.Reference,
			ReversalOfID: &orig.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, dashboardCacheKey)
	log.Info().Str("transaction_id", id.String()).Str("reversal_id", reversal.ID.String()).Msg("bank transaction reversed")
	return transactionToResponse(reversal), nil
}

func (s *bankService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	accountID, err := parseOptionalID("bank_account_id", &filter.BankAccountID)
	if err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	txns, total, err := s.repo.ListTransactions(ctx, repository.TransactionFilter{
		BankAccountID: accountID,
		Category:      filter.Category,
		Direction:     filter.Direction,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.BankTransactionResponse, len(txns))
	for i := range txns {
		data[i] = *transactionToResponse(&txns[i])
	}
	return &dto.TransactionListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Dashboard lists accounts, their total, and the latest entries across all accounts.
func (s *bankService) Dashboard(ctx context.Context) (*dto.BankDashboardResponse, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	recent, err := s.repo.RecentTransactions(ctx, recentTransactionsLimit)
	if err != nil {
		return nil, err
	}
	txns := make([]dto.BankTransactionResponse, len(recent))
	for i := range recent {
		txns[i] = *transactionToResponse(&recent[i])
	}
	return &dto.BankDashboardResponse{
		Accounts:           accounts,
		TotalBalance:       total,
		TotalDisplay:       FormatMoney(total, s.currency),
		RecentTransactions: txns,
	}, nil
}

func (s *bankService) accountToResponse(a *model.BankAccount) *dto.BankAccountResponse {
	return &dto.BankAccountResponse{
		ID:             a.ID.String(),
		Name:           a.Name,
		Balance:        a.Balance,
		BalanceDisplay: FormatMoney(a.Balance, s.currency),
	}
}

func transactionToResponse(t *model.BankTransaction) *dto.BankTransactionResponse {
	resp := &dto.BankTransactionResponse{
		ID:            t.ID.String(),
		BankAccountID: t.BankAccountID.String(),
		Direction:     t.Direction,
		Category:      t.Category,
		Amount:        t.Amount,
		Description:   t.Description,
		Reference:     t.Reference,
		ReversalOfID:  idString(t.ReversalOfID),
		OccurredAt:    t.OccurredAt.Format(time.RFC3339),
	}
	if t.BankAccount != nil {
		resp.AccountName = t.BankAccount.Name
	}
	return resp
}
