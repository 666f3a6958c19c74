package service

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/infra"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventoryService receives stock and exposes the stock movement log.
type InventoryService interface {
	ReceiveStock(ctx context.Context, req dto.ReceiveStockRequest) (*dto.StockReceiptResponse, error)
	ListReceipts(ctx context.Context, filter dto.ReceiptFilter) (*dto.ReceiptListResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	receipts  repository.StockReceiptRepository
	movements repository.StockMovementRepository
	history   repository.CostHistoryRepository
	bank      BankService
	cache     *infra.Cache
}

func NewInventoryService(
	products repository.ProductRepository,
	receipts repository.StockReceiptRepository,
	movements repository.StockMovementRepository,
	history repository.CostHistoryRepository,
	bank BankService,
	cache *infra.Cache,
) InventoryService {
	return &inventoryService{
		products:  products,
		receipts:  receipts,
		movements: movements,
		history:   history,
		bank:      bank,
		cache:     cache,
	}
}

// ── ReceiveStock ──────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the product row
//   2. Fold the batch into quantity and weighted average cost
//   3. Insert the receipt, its stock movement and a cost history row
//   4. When paid from an account, post an out/inventory entry and link it

func (s *inventoryService) ReceiveStock(ctx context.Context, req dto.ReceiveStockRequest) (*dto.StockReceiptResponse, error) {
	productID, err := parseID("product_id", req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalid("quantity", "must be greater than zero")
	}
	if req.UnitCost.IsNegative() {
		return nil, invalid("unit_cost", "must not be negative")
	}
	if err := checkCents("unit_cost", req.UnitCost); err != nil {
		return nil, err
	}
	accountID, err := parseOptionalID("bank_account_id", req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if accountID != nil {
		if err := s.bank.RequireAccount(ctx, *accountID); err != nil {
			return nil, err
		}
	}
	receivedAt, err := parseTimestamp("received_at", req.ReceivedAt)
	if err != nil {
		return nil, err
	}

	var (
		receipt model.StockReceipt
		product *model.Product
	)
	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.products.FindByIDForUpdateTx(tx, productID)
		if err != nil {
			return notFound(err)
		}
		before, oldAvg := p.Quantity, p.AverageCost

		newQty, newAvg := WeightedAverageCost(p.Quantity, p.AverageCost, req.Quantity, req.UnitCost)
		if err := s.products.SetStockTx(tx, p.ID, newQty, newAvg); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		p.Quantity, p.AverageCost = newQty, newAvg
		product = p

		receipt = model.StockReceipt{
			ProductID:     p.ID,
			Quantity:      req.Quantity,
			UnitCost:      req.UnitCost,
			Supplier:      req.Supplier,
			BankAccountID: accountID,
			ReceivedAt:    receivedAt,
		}
		if err := s.receipts.CreateTx(tx, &receipt); err != nil {
			return err
		}

		ref := receipt.ID
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:      p.ID,
			Kind:           model.MovementReceipt,
			Delta:          req.Quantity,
			QuantityBefore: before,
			QuantityAfter:  newQty,
			Note:           receiptNote(req.Supplier),
			ReferenceID:    &ref,
		}); err != nil {
			return err
		}
		if err := s.history.CreateTx(tx, &model.CostHistory{
			ProductID:   p.ID,
			CostBefore:  oldAvg,
			CostAfter:   newAvg,
			PriceBefore: p.SellingPrice,
			PriceAfter:  p.SellingPrice,
			Reason:      model.CostReasonReceipt,
		}); err != nil {
			return err
		}

		// A free receipt has nothing to pay.
		if accountID == nil || receipt.TotalCost().IsZero() {
			return nil
		}
		reference := fmt.Sprintf("StockReceipt #%s", receipt.ID)
		txn, err := s.bank.PostTx(tx, LedgerEntry{
			AccountID:   *accountID,
			Direction:   model.DirectionOut,
			Category:    model.CategoryInventory,
			Amount:      receipt.TotalCost(),
			Description: "Stock purchase: " + p.Name,
			Reference:   &reference,
			OccurredAt:  receivedAt,
		})
		if err != nil {
			return err
		}
		if err := s.receipts.LinkTransactionTx(tx, receipt.ID, txn.ID); err != nil {
			return err
		}
		receipt.BankTransactionID = &txn.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, priceCachePrefix+product.SKU, dashboardCacheKey)
	log.Info().
		Str("receipt_id", receipt.ID.String()).
		Str("sku", product.SKU).
		Int("quantity", req.Quantity).
		Str("average_cost", product.AverageCost.String()).
		Msg("stock received")

	receipt.Product = product
	resp := receiptToResponse(&receipt)
	resp.NewQuantity = product.Quantity
	resp.NewAverageCost = product.AverageCost
	return resp, nil
}

func (s *inventoryService) ListReceipts(ctx context.Context, filter dto.ReceiptFilter) (*dto.ReceiptListResponse, error) {
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
	rows, total, err := s.receipts.List(ctx, repository.ReceiptFilter{ProductID: productID, Page: filter.Page, Limit: filter.Limit})
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockReceiptResponse, len(rows))
	for i := range rows {
		data[i] = *receiptToResponse(&rows[i])
	}
	return &dto.ReceiptListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	productID, err := parseOptionalID("product_id", &filter.ProductID)
	if err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}
	rows, total, err := s.movements.List(ctx, repository.MovementFilter{
		ProductID: productID,
		Kind:      filter.Kind,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockMovementResponse, len(rows))
	for i, m := range rows {
		data[i] = dto.StockMovementResponse{
			ID:             m.ID.String(),
			ProductID:      m.ProductID.String(),
			Kind:           m.Kind,
			Delta:          m.Delta,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Note:           m.Note,
			ReferenceID:    idString(m.ReferenceID),
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		}
		if m.Product != nil {
			data[i].ProductName = m.Product.Name
		}
	}
	return &dto.MovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func receiptNote(supplier string) string {
	if supplier == "" {
		return "Stock receipt"
	}
	return "Stock receipt from " + supplier
}

func receiptToResponse(r *model.StockReceipt) *dto.StockReceiptResponse {
	resp := &dto.StockReceiptResponse{
		ID:                r.ID.String(),
		ProductID:         r.ProductID.String(),
		Quantity:          r.Quantity,
		UnitCost:          r.UnitCost,
		TotalCost:         r.TotalCost(),
		Supplier:          r.Supplier,
		BankAccountID:     idString(r.BankAccountID),
		BankTransactionID: idString(r.BankTransactionID),
		ReceivedAt:        r.ReceivedAt.Format(time.RFC3339),
	}
	if r.Product != nil {
		resp.ProductName = r.Product.Name
	}
	return resp
}
