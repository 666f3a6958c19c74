package dto

import "github.com/shopspring/decimal"

// ─── Accounts ────────────────────────────────────────────────────────────────

type CreateBankAccountRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	// OpeningBalance is posted as an owner_capital entry.
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type BankAccountResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	BalanceDisplay string          `json:"balance_display"`
}

// ReconciliationResponse compares the stored balance with the ledger.
type ReconciliationResponse struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	TotalIn    decimal.Decimal `json:"total_in"`
	TotalOut   decimal.Decimal `json:"total_out"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Difference decimal.Decimal `json:"difference"`
	Balanced   bool            `json:"balanced"`
}

// ─── Transactions ────────────────────────────────────────────────────────────

type RecordTransactionRequest struct {
	BankAccountID string          `json:"bank_account_id" validate:"required,uuid"`
	Direction     string          `json:"direction"       validate:"required,oneof=in out"`
	Category      string          `json:"category"        validate:"required,oneof=sale inventory expense owner_draw owner_capital transfer"`
	Amount        decimal.Decimal `json:"amount"          validate:"gt=0"`
	Description   string          `json:"description"     validate:"required,max=255"`
	Reference     *string         `json:"reference"       validate:"omitempty,max=100"`
	OccurredAt    *string         `json:"occurred_at"` // RFC 3339; defaults to now
}

type ReverseTransactionRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

type TransactionFilter struct {
	BankAccountID string `form:"bank_account_id" validate:"omitempty,uuid"`
	Category      string `form:"category"`
	Direction     string `form:"direction" validate:"omitempty,oneof=in out"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type BankTransactionResponse struct {
	ID            string          `json:"id"`
	BankAccountID string          `json:"bank_account_id"`
	AccountName   string          `json:"account_name,omitempty"`
	Direction     string          `json:"direction"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Reference     *string         `json:"reference"`
	ReversalOfID  *string         `json:"reversal_of_id"`
	OccurredAt    string          `json:"occurred_at"`
}

type TransactionListResponse struct {
	Data  []BankTransactionResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type BankDashboardResponse struct {
	Accounts           []BankAccountResponse     `json:"accounts"`
	TotalBalance       decimal.Decimal           `json:"total_balance"`
	TotalDisplay       string                    `json:"total_display"`
	RecentTransactions []BankTransactionResponse `json:"recent_transactions"`
}

// ─── Owner drawings ──────────────────────────────────────────────────────────

type RecordDrawingRequest struct {
	BankAccountID string          `json:"bank_account_id" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"          validate:"gt=0"`
	Description   string          `json:"description"     validate:"required,max=255"`
	Reference     *string         `json:"reference"       validate:"omitempty,max=100"`
	DrawnAt       *string         `json:"drawn_at"` // RFC 3339; defaults to now
}

type DrawingResponse struct {
	ID                string          `json:"id"`
	BankAccountID     string          `json:"bank_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	Reference         *string         `json:"reference"`
	BankTransactionID *string         `json:"bank_transaction_id"`
	DrawnAt           string          `json:"drawn_at"`
}

type DrawingListResponse struct {
	Data  []DrawingResponse `json:"data"`
	Total decimal.Decimal   `json:"total"`
}
