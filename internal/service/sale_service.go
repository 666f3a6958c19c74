package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/infra"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SaleOptions carries the business settings a sale depends on.
type SaleOptions struct {
	Policy       OversellPolicy
	NotifyEmail  string // low-stock alerts; empty disables
	BusinessName string
	Currency     string
}

type SaleService interface {
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// WriteReceiptPDF renders the sale receipt into w.
	WriteReceiptPDF(ctx context.Context, id uuid.UUID, w io.Writer) error
}

type saleService struct {
	repo      repository.SaleRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	bank      BankService
	cache     *infra.Cache
	queue     worker.Enqueuer
	opts      SaleOptions
}

// NewSaleService wires the sale flow. queue may be nil, which disables
// low-stock notifications.
func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	bank BankService,
	cache *infra.Cache,
	queue worker.Enqueuer,
	opts SaleOptions,
) SaleService {
	if opts.Policy == "" {
		opts.Policy = OversellClamp
	}
	return &saleService{
		repo:      repo,
		products:  products,
		movements: movements,
		bank:      bank,
		cache:     cache,
		queue:     queue,
		opts:      opts,
	}
}

// ── RecordSale ────────────────────────────────────────────────────────────────
// Explicit unit of work, in this order and inside one transaction:
//   1. Validate the request (no writes on failure)
//   2. Lock the product row and apply the oversell policy
//   3. Snapshot cost_at_sale from the current average cost
//   4. Persist the sale with its profit
//   5. Decrement quantity (floored at zero) and log the movement
//   6. For transfers, post an in/sale entry and link it to the sale
// After commit: invalidate caches, queue a low-stock alert (best-effort).

func (s *saleService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	productID, err := parseID("product_id", req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	if req.SellingPrice.IsNegative() {
		return nil, invalid("selling_price", "must not be negative")
	}
	if err := checkCents("selling_price", req.SellingPrice); err != nil {
		return nil, err
	}
	if req.PaymentMethod != model.PaymentCash && req.PaymentMethod != model.PaymentTransfer {
		return nil, invalid("payment_method", "must be cash or transfer")
	}
	accountID, err := parseOptionalID("bank_account_id", req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if req.PaymentMethod == model.PaymentTransfer && accountID == nil {
		return nil, invalid("bank_account_id", "required for transfer payments")
	}
	if accountID != nil {
		if err := s.bank.RequireAccount(ctx, *accountID); err != nil {
			return nil, err
		}
	}

	var (
		sale    model.Sale
		product *model.Product
		onHand  int
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.products.FindByIDForUpdateTx(tx, productID)
		if err != nil {
			return notFound(err)
		}
		before := p.Quantity
		onHand = before
		after, err := DecrementStock(p.Quantity, req.Quantity, s.opts.Policy)
		if err != nil {
			return err
		}

		// Cost basis is captured here, once. Sales have no update path.
		sale = model.Sale{
			ProductID:     p.ID,
			Quantity:      req.Quantity,
			CostAtSale:    p.AverageCost,
			SellingPrice:  req.SellingPrice,
			Profit:        SaleProfit(req.SellingPrice, p.AverageCost, req.Quantity),
			PaymentMethod: req.PaymentMethod,
			BankAccountID: accountID,
			Reference:     req.Reference,
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		if err := s.products.UpdateStockTx(tx, p.ID, -req.Quantity); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		note := "Sale " + derefOr(req.Reference, sale.ID.String())
		if short := req.Quantity - before; short > 0 {
			note = fmt.Sprintf("%s (oversold by %d)", note, short)
			log.Warn().Str("sku", p.SKU).Int("on_hand", before).Int("sold", req.Quantity).Msg("oversell clamped to zero")
		}
		ref := sale.ID
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:      p.ID,
			Kind:           model.MovementSale,
			Delta:          after - before,
			QuantityBefore: before,
			QuantityAfter:  after,
			Note:           note,
			ReferenceID:    &ref,
		}); err != nil {
			return err
		}
		p.Quantity = after
		product = p

		amount := LineTotal(req.SellingPrice, req.Quantity)
		// Cash sales and free transfers leave the ledger alone.
		if req.PaymentMethod != model.PaymentTransfer || amount.IsZero() {
			return nil
		}
		txn, err := s.bank.PostTx(tx, LedgerEntry{
			AccountID:   *accountID,
			Direction:   model.DirectionIn,
			Category:    model.CategorySale,
			Amount:      amount,
			Description: "Sale Ref: " + derefOr(req.Reference, "N/A"),
			Reference:   req.Reference,
		})
		if err != nil {
			return err
		}
		if err := s.repo.LinkTransactionTx(tx, sale.ID, txn.ID); err != nil {
			return err
		}
		sale.BankTransactionID = &txn.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, priceCachePrefix+product.SKU, dashboardCacheKey)
	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("sku", product.SKU).
		Int("quantity", sale.Quantity).
		Str("cost_at_sale", sale.CostAtSale.String()).
		Str("profit", sale.Profit.StringFixed(2)).
		Msg("sale recorded")

	// Alert once, when this sale crosses the reorder level.
	if product.IsLowStock() && onHand > product.ReorderLevel {
		s.notifyLowStock(ctx, product)
	}

	sale.Product = product
	resp := saleToResponse(&sale)
	remaining := product.Quantity
	resp.RemainingQuantity = &remaining
	return resp, nil
}

// notifyLowStock never fails the sale: the write is already committed.
func (s *saleService) notifyLowStock(ctx context.Context, p *model.Product) {
	if s.queue == nil || s.opts.NotifyEmail == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: s.opts.NotifyEmail,
		Subject: fmt.Sprintf("Low stock: %s (%s)", p.Name, p.SKU),
		Body: fmt.Sprintf("%s (%s) is down to %d units; reorder level is %d.",
			p.Name, p.SKU, p.Quantity, p.ReorderLevel),
	}
	if err := s.queue.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("sku", p.SKU).Msg("low-stock alert not queued")
	}
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	productID, err := parseOptionalID("product_id", &filter.ProductID)
	if err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	rf := repository.SaleFilter{
		ProductID:     productID,
		PaymentMethod: filter.PaymentMethod,
		From:          filter.From,
		To:            filter.To,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}
	sales, total, err := s.repo.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, rf)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		data[i] = *saleToResponse(&sales[i])
	}
	return &dto.SaleListResponse{
		Data:    data,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
		Revenue: totals.Revenue,
		Profit:  totals.Profit,
	}, nil
}

func (s *saleService) WriteReceiptPDF(ctx context.Context, id uuid.UUID, w io.Writer) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	r := infra.SaleReceipt{
		BusinessName:  s.opts.BusinessName,
		SaleID:        sale.ID.String(),
		Reference:     derefOr(sale.Reference, ""),
		SoldAt:        sale.CreatedAt,
		Quantity:      sale.Quantity,
		UnitPrice:     FormatMoney(sale.SellingPrice, s.opts.Currency),
		Total:         FormatMoney(sale.Revenue(), s.opts.Currency),
		PaymentMethod: sale.PaymentMethod,
	}
	if sale.Product != nil {
		r.ProductName = sale.Product.Name
		r.SKU = sale.Product.SKU
	}
	return infra.WriteSaleReceiptPDF(w, r)
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                s.ID.String(),
		ProductID:         s.ProductID.String(),
		Quantity:          s.Quantity,
		CostAtSale:        s.CostAtSale,
		SellingPrice:      s.SellingPrice,
		Revenue:           s.Revenue(),
		Profit:            s.Profit,
		PaymentMethod:     s.PaymentMethod,
		BankAccountID:     idString(s.BankAccountID),
		BankTransactionID: idString(s.BankTransactionID),
		Reference:         s.Reference,
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
	}
	if s.Product != nil {
		resp.ProductName = s.Product.Name
		resp.SKU = s.Product.SKU
	}
	return resp
}
