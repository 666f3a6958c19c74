package handler

import (
	"net/http"

	"backoffice/internal/apierror"
	"backoffice/internal/dto"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportSize caps historical sales uploads.
const maxImportSize = 10 << 20

// HistoricalSalesHandler serves pre-go-live sales.
type HistoricalSalesHandler struct{ svc service.HistoricalSaleService }

func NewHistoricalSalesHandler(svc service.HistoricalSaleService) *HistoricalSalesHandler {
	return &HistoricalSalesHandler{svc: svc}
}

func (h *HistoricalSalesHandler) Create(c *gin.Context) {
	var req dto.CreateHistoricalSaleRequest
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

func (h *HistoricalSalesHandler) List(c *gin.Context) {
	var filter dto.HistoricalSaleFilter
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

// Import godoc
// @Summary      Import historical sales from an .xlsx workbook
// @Description  Reads the first sheet. Columns: date, sku, product, quantity, unit cost, selling price, reference. One bad row rejects the whole file.
// @Tags         historical-sales
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Workbook"
// @Success      201  {object} dto.ImportHistoricalSalesResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/historical-sales/import [post]
func (h *HistoricalSalesHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cannot read upload"))
		return
	}
	defer f.Close()

	resp, err := h.svc.Import(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Reports ──────────────────────────────────────────────────────────────────

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Business dashboard
// @Description  Inventory value, live and historical sales, bank balances, drawings and low-stock products. Cached for a minute.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
