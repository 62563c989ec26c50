package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/policysearch"
	"policyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SearchService fronts the tiered policy search engine and manages the
// portal registry the tiers resolve through.
type SearchService struct {
	engine     *policysearch.Engine
	portalRepo *repository.PortalRepository
	logger     *zap.Logger
}

func NewSearchService(engine *policysearch.Engine, portalRepo *repository.PortalRepository, logger *zap.Logger) *SearchService {
	return &SearchService{
		engine:     engine,
		portalRepo: portalRepo,
		logger:     logger,
	}
}

func (s *SearchService) Search(ctx context.Context, req *dto.PolicySearchRequest) (*dto.PolicySearchResponse, error) {
	strategy, err := policysearch.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	result := s.engine.Search(ctx, policysearch.SearchRequest{
		Query:    req.Query,
		Region:   req.Region,
		Strategy: strategy,
		Limit:    req.Limit,
	})

	records := make([]dto.PolicyRecordResponse, len(result.Records))
	for i, rec := range result.Records {
		records[i] = dto.PolicyRecordResponse{
			Title:       rec.Title,
			URL:         rec.URL,
			Source:      rec.Source,
			PublishDate: rec.PublishDate,
			PolicyType:  rec.PolicyType,
			Department:  rec.Department,
			Relevance:   rec.Relevance,
		}
	}

	return &dto.PolicySearchResponse{
		Records: records,
		Tier:    result.Tier,
		Quality: result.Quality,
		Summary: result.Summary,
		Cached:  result.Cached,
	}, nil
}

func (s *SearchService) CreatePortal(ctx context.Context, req *dto.PortalRequest) (*dto.PortalResponse, error) {
	if existing, err := s.portalRepo.GetByRegion(ctx, req.Region); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: portal for region %s", ErrConflict, req.Region)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now()
	portal := &models.PolicyPortal{
		ID:           uuid.New(),
		Region:       req.Region,
		Name:         req.Name,
		SearchURL:    req.SearchURL,
		ParentRegion: req.ParentRegion,
		Selectors:    selectorsFromDTO(req.Selectors),
		Enabled:      enabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.portalRepo.Create(ctx, portal); err != nil {
		return nil, err
	}

	s.logger.Info("policy portal registered", zap.String("region", portal.Region))
	resp := portalToResponse(portal)
	return &resp, nil
}

func (s *SearchService) GetPortal(ctx context.Context, id uuid.UUID) (*dto.PortalResponse, error) {
	portal, err := s.portalRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := portalToResponse(portal)
	return &resp, nil
}

func (s *SearchService) ListPortals(ctx context.Context) ([]dto.PortalResponse, error) {
	portals, err := s.portalRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PortalResponse, len(portals))
	for i, portal := range portals {
		responses[i] = portalToResponse(portal)
	}
	return responses, nil
}

func (s *SearchService) UpdatePortal(ctx context.Context, id uuid.UUID, req *dto.PortalRequest) (*dto.PortalResponse, error) {
	portal, err := s.portalRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Region != "" {
		portal.Region = req.Region
	}
	if req.Name != "" {
		portal.Name = req.Name
	}
	if req.SearchURL != "" {
		portal.SearchURL = req.SearchURL
	}
	portal.ParentRegion = req.ParentRegion
	if req.Selectors.Result != "" {
		portal.Selectors = selectorsFromDTO(req.Selectors)
	}
	if req.Enabled != nil {
		portal.Enabled = *req.Enabled
	}
	portal.UpdatedAt = time.Now()

	if err := s.portalRepo.Update(ctx, portal); err != nil {
		return nil, err
	}
	resp := portalToResponse(portal)
	return &resp, nil
}

func (s *SearchService) DeletePortal(ctx context.Context, id uuid.UUID) error {
	return s.portalRepo.Delete(ctx, id)
}

func selectorsFromDTO(sel dto.SelectorConfig) models.PortalSelectors {
	return models.PortalSelectors{
		Result:     sel.Result,
		Title:      sel.Title,
		URL:        sel.URL,
		Date:       sel.Date,
		Department: sel.Department,
	}
}

func portalToResponse(portal *models.PolicyPortal) dto.PortalResponse {
	return dto.PortalResponse{
		ID:           portal.ID.String(),
		Region:       portal.Region,
		Name:         portal.Name,
		SearchURL:    portal.SearchURL,
		ParentRegion: portal.ParentRegion,
		Selectors: dto.SelectorConfig{
			Result:     portal.Selectors.Result,
			Title:      portal.Selectors.Title,
			URL:        portal.Selectors.URL,
			Date:       portal.Selectors.Date,
			Department: portal.Selectors.Department,
		},
		Enabled:   portal.Enabled,
		CreatedAt: portal.CreatedAt.Format(time.RFC3339),
		UpdatedAt: portal.UpdatedAt.Format(time.RFC3339),
	}
}
