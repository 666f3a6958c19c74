package service

import (
	"context"
	"io"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/excel"
	"backoffice/internal/infra"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// HistoricalSaleService manages pre-go-live sales. They feed reports only and
// never touch products or bank accounts.
type HistoricalSaleService interface {
	Create(ctx context.Context, req dto.CreateHistoricalSaleRequest) (*dto.HistoricalSaleResponse, error)
	List(ctx context.Context, filter dto.HistoricalSaleFilter) (*dto.HistoricalSaleListResponse, error)
	// Import loads an .xlsx sheet. Either every row is stored or none is.
	Import(ctx context.Context, r io.Reader) (*dto.ImportHistoricalSalesResponse, error)
}

type historicalSaleService struct {
	repo  repository.HistoricalSaleRepository
	cache *infra.Cache
}

func NewHistoricalSaleService(repo repository.HistoricalSaleRepository, cache *infra.Cache) HistoricalSaleService {
	return &historicalSaleService{repo: repo, cache: cache}
}

func (s *historicalSaleService) Create(ctx context.Context, req dto.CreateHistoricalSaleRequest) (*dto.HistoricalSaleResponse, error) {
	soldOn, err := time.Parse(dateLayout, req.SoldOn)
	if err != nil {
		return nil, invalid("sold_on", "must be YYYY-MM-DD")
	}
	if req.Quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	if req.UnitCost.IsNegative() || req.SellingPrice.IsNegative() {
		return nil, invalid("selling_price", "amounts must not be negative")
	}
	if err := checkCents("unit_cost", req.UnitCost); err != nil {
		return nil, err
	}
	if err := checkCents("selling_price", req.SellingPrice); err != nil {
		return nil, err
	}

	h := newHistoricalSale(soldOn, req.SKU, req.ProductName, req.Quantity, req.UnitCost, req.SellingPrice, req.Reference)
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, dashboardCacheKey)
	return historicalToResponse(h), nil
}

func (s *historicalSaleService) List(ctx context.Context, filter dto.HistoricalSaleFilter) (*dto.HistoricalSaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 50
	}
	rf := repository.HistoricalSaleFilter{
		From:  filter.From,
		To:    filter.To,
		SKU:   filter.SKU,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	rows, total, err := s.repo.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, rf)
	if err != nil {
		return nil, err
	}
	data := make([]dto.HistoricalSaleResponse, len(rows))
	for i := range rows {
		data[i] = *historicalToResponse(&rows[i])
	}
	return &dto.HistoricalSaleListResponse{
		Data:    data,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
		Revenue: totals.Revenue,
		Profit:  totals.Profit,
	}, nil
}

func (s *historicalSaleService) Import(ctx context.Context, r io.Reader) (*dto.ImportHistoricalSalesResponse, error) {
	parsed, err := excel.ParseHistoricalSales(r)
	if err != nil {
		return nil, invalid("file", err.Error())
	}

	rows := make([]model.HistoricalSale, len(parsed))
	revenue, profit := decimal.Zero, decimal.Zero
	for i, p := range parsed {
		rows[i] = *newHistoricalSale(p.SoldOn, p.SKU, p.ProductName, p.Quantity, p.UnitCost, p.SellingPrice, p.Reference)
		revenue = revenue.Add(rows[i].Revenue())
		profit = profit.Add(rows[i].Profit)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateBatchTx(tx, rows)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, dashboardCacheKey)
	log.Info().Int("rows", len(rows)).Str("revenue", revenue.StringFixed(2)).Msg("historical sales imported")
	return &dto.ImportHistoricalSalesResponse{Imported: len(rows), Revenue: revenue, Profit: profit}, nil
}

func newHistoricalSale(soldOn time.Time, sku, name string, qty int, cost, price decimal.Decimal, ref *string) *model.HistoricalSale {
	return &model.HistoricalSale{
		SoldOn:       soldOn,
		SKU:          sku,
		ProductName:  name,
		Quantity:     qty,
		UnitCost:     cost,
		SellingPrice: price,
		Profit:       SaleProfit(price, cost, qty),
		Reference:    ref,
	}
}

func historicalToResponse(h *model.HistoricalSale) *dto.HistoricalSaleResponse {
	return &dto.HistoricalSaleResponse{
		ID:           h.ID.String(),
		SoldOn:       h.SoldOn.Format(dateLayout),
		SKU:          h.SKU,
		ProductName:  h.ProductName,
		Quantity:     h.Quantity,
		UnitCost:     h.UnitCost,
		SellingPrice: h.SellingPrice,
		Revenue:      h.Revenue(),
		Profit:       h.Profit,
		Reference:    h.Reference,
	}
}
