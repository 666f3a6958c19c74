package handler

import (
	"bytes"
	"net/http"

	"backoffice/internal/dto"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// RecordSale godoc
// @Summary      Record a sale
// @Description  Locks the cost basis at the current average cost, decrements stock and, for transfers, deposits the revenue.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordSaleRequest true "Sale"
// @Success      201  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError "Insufficient stock (reject policy only)"
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/sales [post]
func (h *SalesHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List sales with revenue and profit totals
// @Tags     sales
// @Produce  json
// @Security BearerAuth
// @Param    product_id     query string false "Product ID"
// @Param    payment_method query string false "cash or transfer"
// @Param    from           query string false "YYYY-MM-DD"
// @Param    to             query string false "YYYY-MM-DD"
// @Success  200 {object} dto.SaleListResponse
// @Router   /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt godoc
// @Summary  Sale receipt as PDF
// @Tags     sales
// @Produce  application/pdf
// @Security BearerAuth
// @Param    id path string true "Sale ID"
// @Success  200 {file} file
// @Failure  404 {object} apierror.APIError
// @Router   /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	// Render fully before writing so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := h.svc.WriteReceiptPDF(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="sale-`+id.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
