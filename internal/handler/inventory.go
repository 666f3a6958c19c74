package handler

import (
	"net/http"

	"backoffice/internal/dto"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ReceiveStock godoc
// @Summary      Receive stock
// @Description  Adds units at a unit cost and recomputes the weighted average cost. With bank_account_id the purchase is paid from that account.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ReceiveStockRequest true "Receipt"
// @Success      201  {object} dto.StockReceiptResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/inventory/receipts [post]
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReceiveStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) ListReceipts(c *gin.Context) {
	var filter dto.ReceiptFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements godoc
// @Summary  Stock movement log
// @Tags     inventory
// @Produce  json
// @Security BearerAuth
// @Param    product_id query string false "Product ID"
// @Param    kind       query string false "receipt or sale"
// @Success  200 {object} dto.MovementListResponse
// @Router   /v1/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
