package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backoffice/internal/dto"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeSales records the last request and returns err when set.
type fakeSales struct {
	err  error
	last dto.RecordSaleRequest
}

var _ service.SaleService = (*fakeSales)(nil)

func (f *fakeSales) RecordSale(_ context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SaleResponse{ID: uuid.NewString(), Quantity: req.Quantity, SellingPrice: req.SellingPrice}, nil
}

func (f *fakeSales) Get(_ context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SaleResponse{ID: id.String()}, nil
}

func (f *fakeSales) List(_ context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	return &dto.SaleListResponse{Page: filter.Page, Limit: filter.Limit}, f.err
}

func (f *fakeSales) WriteReceiptPDF(_ context.Context, _ uuid.UUID, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 fake")
	return err
}

func salesEngine(svc service.SaleService) *gin.Engine {
	h := NewSalesHandler(svc)
	r := gin.New()
	r.POST("/sales", h.RecordSale)
	r.GET("/sales", h.List)
	r.GET("/sales/:id", h.Get)
	r.GET("/sales/:id/receipt", h.Receipt)
	return r
}

func request(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── respondError ─────────────────────────────────────────────────────────────

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Fields: map[string]string{"quantity": "must be greater than zero"}}, http.StatusUnprocessableEntity},
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrInsufficientStock, http.StatusConflict},
		{service.ErrAlreadyReversed, http.StatusConflict},
		{service.ErrReversalOfReversal, http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrInactiveUser, http.StatusUnauthorized},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRespondError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, &service.ValidationError{Fields: map[string]string{"bank_account_id": "required for transfer payments"}})

	var body struct {
		Detail string            `json:"detail"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Detail)
	assert.Equal(t, "required for transfer payments", body.Fields["bank_account_id"])
}

// ── Binding and validation ───────────────────────────────────────────────────

func TestRecordSale_BindsDecimalAndCallsService(t *testing.T) {
	svc := &fakeSales{}
	w := request(salesEngine(svc), http.MethodPost, "/sales",
		`{"product_id":"`+uuid.NewString()+`","quantity":2,"selling_price":"499.99","payment_method":"cash"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, svc.last.SellingPrice.Equal(decimal.RequireFromString("499.99")))
	assert.Equal(t, 2, svc.last.Quantity)
}

func TestRecordSale_ValidationUsesJSONNames(t *testing.T) {
	w := request(salesEngine(&fakeSales{}), http.MethodPost, "/sales",
		`{"product_id":"not-a-uuid","quantity":0,"selling_price":"-1","payment_method":"card"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "uuid", body.Fields["product_id"])
	assert.Equal(t, "required", body.Fields["quantity"])
	assert.Equal(t, "min", body.Fields["selling_price"])
	assert.Equal(t, "oneof", body.Fields["payment_method"])
}

func TestRecordSale_MalformedJSON(t *testing.T) {
	w := request(salesEngine(&fakeSales{}), http.MethodPost, "/sales", `{"quantity":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordSale_ServiceConflict(t *testing.T) {
	svc := &fakeSales{err: service.ErrInsufficientStock}
	w := request(salesEngine(svc), http.MethodPost, "/sales",
		`{"product_id":"`+uuid.NewString()+`","quantity":9,"selling_price":"10","payment_method":"cash"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListSales_QueryDefaultsAndLimits(t *testing.T) {
	r := salesEngine(&fakeSales{})

	w := request(r, http.MethodGet, "/sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.SaleListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 50, list.Limit)

	w = request(r, http.MethodGet, "/sales?limit=500", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetSale_BadID(t *testing.T) {
	w := request(salesEngine(&fakeSales{}), http.MethodGet, "/sales/123", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── Receipt ──────────────────────────────────────────────────────────────────

func TestReceipt_ServesPDF(t *testing.T) {
	w := request(salesEngine(&fakeSales{}), http.MethodGet, "/sales/"+uuid.NewString()+"/receipt", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestReceipt_NotFoundIsJSON(t *testing.T) {
	w := request(salesEngine(&fakeSales{err: service.ErrNotFound}), http.MethodGet, "/sales/"+uuid.NewString()+"/receipt", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}
