package handler

import (
	"net/http"

	"backoffice/internal/dto"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

// BankHandler serves accounts, the ledger and owner drawings.
type BankHandler struct {
	bank     service.BankService
	drawings service.DrawingService
}

func NewBankHandler(bank service.BankService, drawings service.DrawingService) *BankHandler {
	return &BankHandler{bank: bank, drawings: drawings}
}

// ── Accounts ─────────────────────────────────────────────────────────────────

// CreateAccount godoc
// @Summary      Open a bank account
// @Description  A positive opening_balance is posted as an owner_capital entry.
// @Tags         bank
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateBankAccountRequest true "Account"
// @Success      201  {object} dto.BankAccountResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/bank/accounts [post]
func (h *BankHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateBankAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bank.CreateAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BankHandler) ListAccounts(c *gin.Context) {
	resp, err := h.bank.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile godoc
// @Summary  Compare an account balance with the sum of its ledger
// @Tags     bank
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Account ID"
// @Success  200 {object} dto.ReconciliationResponse
// @Router   /v1/bank/accounts/{id}/reconcile [get]
func (h *BankHandler) Reconcile(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.bank.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Ledger ───────────────────────────────────────────────────────────────────

// RecordTransaction godoc
// @Summary  Post a manual ledger entry
// @Tags     bank
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.RecordTransactionRequest true "Entry"
// @Success  201 {object} dto.BankTransactionResponse
// @Failure  422 {object} apierror.ValidationError
// @Router   /v1/bank/transactions [post]
func (h *BankHandler) RecordTransaction(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bank.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ReverseTransaction godoc
// @Summary      Reverse a ledger entry
// @Description  Posts the opposite entry. Entries are never edited or deleted, and each can be reversed once.
// @Tags         bank
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Transaction ID"
// @Param        body body dto.ReverseTransactionRequest true "Reason"
// @Success      201  {object} dto.BankTransactionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/bank/transactions/{id}/reverse [post]
func (h *BankHandler) ReverseTransaction(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReverseTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bank.ReverseTransaction(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BankHandler) ListTransactions(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.bank.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard godoc
// @Summary  Accounts, total balance and the latest 50 entries
// @Tags     bank
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} dto.BankDashboardResponse
// @Router   /v1/bank/dashboard [get]
func (h *BankHandler) Dashboard(c *gin.Context) {
	resp, err := h.bank.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Owner drawings ───────────────────────────────────────────────────────────

// RecordDrawing godoc
// @Summary  Record an owner drawing
// @Tags     bank
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.RecordDrawingRequest true "Drawing"
// @Success  201 {object} dto.DrawingResponse
// @Router   /v1/drawings [post]
func (h *BankHandler) RecordDrawing(c *gin.Context) {
	var req dto.RecordDrawingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.drawings.RecordDrawing(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PostDrawing godoc
// @Summary      Post a drawing to the ledger
// @Description  Idempotent: a drawing that already has its ledger entry is returned unchanged.
// @Tags         bank
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Drawing ID"
// @Success      200 {object} dto.DrawingResponse
// @Router       /v1/drawings/{id}/post [post]
func (h *BankHandler) PostDrawing(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.drawings.PostDrawing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BankHandler) ListDrawings(c *gin.Context) {
	resp, err := h.drawings.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
