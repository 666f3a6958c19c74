package service

import (
	"context"
	"errors"
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

const (
	defaultReorderLevel = 5

	priceCachePrefix = "price:"
	priceCacheTTL    = 4 * time.Hour
)

// ProductService defines the business logic contract for products.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	CostHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.CostHistoryListResponse, error)
	// PriceLookup is the public, read-only price check by SKU.
	PriceLookup(ctx context.Context, sku string) (*dto.PriceLookupResponse, error)
}

type productService struct {
	repo     repository.ProductRepository
	history  repository.CostHistoryRepository
	cache    *infra.Cache
	currency string
}

func NewProductService(
	repo repository.ProductRepository,
	history repository.CostHistoryRepository,
	cache *infra.Cache,
	currency string,
) ProductService {
	return &productService{repo: repo, history: history, cache: cache, currency: currency}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.SellingPrice.IsNegative() {
		return nil, invalid("selling_price", "must not be negative")
	}
	if err := checkCents("selling_price", req.SellingPrice); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, invalid("sku", "already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reorder := defaultReorderLevel
	if req.ReorderLevel != nil {
		reorder = *req.ReorderLevel
	}
	p := &model.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Brand:        req.Brand,
		Model:        req.Model,
		Size:         req.Size,
		Color:        req.Color,
		AverageCost:  decimal.Zero,
		SellingPrice: req.SellingPrice,
		Quantity:     0,
		ReorderLevel: reorder,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, dashboardCacheKey)
	log.Info().Str("product_id", p.ID.String()).Str("sku", p.SKU).Msg("product created")
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = *productToResponse(&products[i])
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update changes descriptive fields and the selling price. A price change is
// appended to the cost history in the same transaction.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, invalid("selling_price", "must not be negative")
		}
		if err := checkCents("selling_price", *req.SellingPrice); err != nil {
			return nil, err
		}
	}

	var updated *model.Product
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		oldPrice := p.SellingPrice

		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Brand != nil {
			p.Brand = *req.Brand
		}
		if req.Model != nil {
			p.Model = *req.Model
		}
		if req.Size != nil {
			p.Size = *req.Size
		}
		if req.Color != nil {
			p.Color = *req.Color
		}
		if req.ReorderLevel != nil {
			p.ReorderLevel = *req.ReorderLevel
		}
		if req.SellingPrice != nil {
			p.SellingPrice = *req.SellingPrice
		}

		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		if !oldPrice.Equal(p.SellingPrice) {
			if err := s.history.CreateTx(tx, &model.CostHistory{
				ProductID:   p.ID,
				CostBefore:  p.AverageCost,
				CostAfter:   p.AverageCost,
				PriceBefore: oldPrice,
				PriceAfter:  p.SellingPrice,
				Reason:      model.CostReasonManual,
			}); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, priceCachePrefix+updated.SKU, dashboardCacheKey)
	return productToResponse(updated), nil
}

func (s *productService) CostHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.CostHistoryListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, total, err := s.history.ListByProduct(ctx, id, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CostHistoryItem, len(rows))
	for i, h := range rows {
		data[i] = dto.CostHistoryItem{
			ID:          h.ID.String(),
			CostBefore:  h.CostBefore,
			CostAfter:   h.CostAfter,
			PriceBefore: h.PriceBefore,
			PriceAfter:  h.PriceAfter,
			Reason:      h.Reason,
			CreatedAt:   h.CreatedAt.Format(time.RFC3339),
		}
	}
	return &dto.CostHistoryListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *productService) PriceLookup(ctx context.Context, sku string) (*dto.PriceLookupResponse, error) {
	key := priceCachePrefix + sku
	var cached dto.PriceLookupResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, notFound(err)
	}
	resp := &dto.PriceLookupResponse{
		SKU:          p.SKU,
		Name:         p.Name,
		SellingPrice: p.SellingPrice,
		Display:      FormatMoney(p.SellingPrice, s.currency),
		InStock:      p.Quantity,
	}
	s.cache.SetJSON(ctx, key, resp, priceCacheTTL)
	return resp, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		Brand:        p.Brand,
		Model:        p.Model,
		Size:         p.Size,
		Color:        p.Color,
		AverageCost:  p.AverageCost,
		SellingPrice: p.SellingPrice,
		Quantity:     p.Quantity,
		ReorderLevel: p.ReorderLevel,
		LowStock:     p.IsLowStock(),
		StockValue:   p.AverageCost.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2),
	}
}
