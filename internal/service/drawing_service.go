package service

import (
	"context"
	"time"

	"backoffice/internal/dto"
	"backoffice/internal/infra"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DrawingService records owner drawings. Each drawing ends up linked to
// exactly one out/owner_draw ledger entry.
type DrawingService interface {
	RecordDrawing(ctx context.Context, req dto.RecordDrawingRequest) (*dto.DrawingResponse, error)
	// PostDrawing makes sure the drawing has its ledger entry. Calling it on
	// an already linked drawing returns the drawing unchanged.
	PostDrawing(ctx context.Context, id uuid.UUID) (*dto.DrawingResponse, error)
	List(ctx context.Context) (*dto.DrawingListResponse, error)
}

type drawingService struct {
	repo  repository.DrawingRepository
	bank  BankService
	cache *infra.Cache
}

func NewDrawingService(repo repository.DrawingRepository, bank BankService, cache *infra.Cache) DrawingService {
	return &drawingService{repo: repo, bank: bank, cache: cache}
}

func (s *drawingService) RecordDrawing(ctx context.Context, req dto.RecordDrawingRequest) (*dto.DrawingResponse, error) {
	accountID, err := parseID("bank_account_id", req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if err := checkCents("amount", req.Amount); err != nil {
		return nil, err
	}
	drawnAt, err := parseTimestamp("drawn_at", req.DrawnAt)
	if err != nil {
		return nil, err
	}

	d := &model.OwnerDrawing{
		Amount:        req.Amount,
		Description:   req.Description,
		Reference:     req.Reference,
		BankAccountID: accountID,
		DrawnAt:       drawnAt,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, d); err != nil {
			return err
		}
		return s.postTx(tx, d)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, dashboardCacheKey)
	log.Info().Str("drawing_id", d.ID.String()).Str("amount", d.Amount.StringFixed(2)).Msg("owner drawing recorded")
	return drawingToResponse(d), nil
}

func (s *drawingService) PostDrawing(ctx context.Context, id uuid.UUID) (*dto.DrawingResponse, error) {
	var d *model.OwnerDrawing
	posted := false
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		d, err = s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		if d.BankTransactionID != nil {
			return nil
		}
		posted = true
		return s.postTx(tx, d)
	})
	if err != nil {
		return nil, err
	}

	if posted {
		s.cache.Delete(ctx, dashboardCacheKey)
		log.Info().Str("drawing_id", d.ID.String()).Msg("owner drawing posted")
	}
	return drawingToResponse(d), nil
}

// postTx posts the withdrawal and links it. Caller holds the drawing row.
func (s *drawingService) postTx(tx *gorm.DB, d *model.OwnerDrawing) error {
	txn, err := s.bank.PostTx(tx, LedgerEntry{
		AccountID:   d.BankAccountID,
		Direction:   model.DirectionOut,
		Category:    model.CategoryOwnerDraw,
		Amount:      d.Amount,
		Description: "Owner drawing: " + d.Description,
		Reference:   d.Reference,
		OccurredAt:  d.DrawnAt,
	})
	if err != nil {
		return err
	}
	if err := s.repo.LinkTransactionTx(tx, d.ID, txn.ID); err != nil {
		return err
	}
	d.BankTransactionID = &txn.ID
	return nil
}

func (s *drawingService) List(ctx context.Context) (*dto.DrawingListResponse, error) {
	drawings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Total(ctx)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DrawingResponse, len(drawings))
	for i := range drawings {
		data[i] = *drawingToResponse(&drawings[i])
	}
	return &dto.DrawingListResponse{Data: data, Total: total}, nil
}

func drawingToResponse(d *model.OwnerDrawing) *dto.DrawingResponse {
	return &dto.DrawingResponse{
		ID:                d.ID.String(),
		BankAccountID:     d.BankAccountID.String(),
		Amount:            d.Amount,
		Description:       d.Description,
		Reference:         d.Reference,
		BankTransactionID: idString(d.BankTransactionID),
		DrawnAt:           d.DrawnAt.Format(time.RFC3339),
	}
}
