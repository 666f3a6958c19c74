package handler

import (
	"net/http"

	"backoffice/internal/dto"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary      Create a product
// @Description  New products start with zero stock and zero average cost. Stock only arrives through receipts.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "Product"
// @Success      201  {object} dto.ProductResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Param    q         query string false "Search by SKU or name"
// @Param    low_stock query bool   false "Only products at or below their reorder level"
// @Param    page      query int    false "Page"
// @Param    limit     query int    false "Page size"
// @Success  200 {object} dto.ProductListResponse
// @Router   /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
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

func (h *ProductsHandler) Get(c *gin.Context) {
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

// Update godoc
// @Summary      Update product details or selling price
// @Description  Quantity and average cost cannot be edited here.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Product ID"
// @Param        body body dto.UpdateProductRequest true "Changes"
// @Success      200  {object} dto.ProductResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type pageQuery struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

// CostHistory godoc
// @Summary  Average cost and selling price changes for a product
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Param    id    path  string true  "Product ID"
// @Param    page  query int    false "Page"
// @Param    limit query int    false "Page size"
// @Success  200 {object} dto.CostHistoryListResponse
// @Router   /v1/products/{id}/cost-history [get]
func (h *ProductsHandler) CostHistory(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.CostHistory(c.Request.Context(), id, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PriceLookup godoc
// @Summary  Public price check by SKU (no authentication)
// @Tags     products
// @Produce  json
// @Param    sku path string true "SKU"
// @Success  200 {object} dto.PriceLookupResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/price/{sku} [get]
func (h *ProductsHandler) PriceLookup(c *gin.Context) {
	resp, err := h.svc.PriceLookup(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
