package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const pingTimeout = 10 * time.Second

// MCPRegistryService manages registered tool service configs. The
// platform stores endpoints and probes their health; it does not speak
// the tool protocol itself.
type MCPRegistryService struct {
	mcpRepo *repository.MCPRepository
	client  *http.Client
	logger  *zap.Logger
}

func NewMCPRegistryService(mcpRepo *repository.MCPRepository, logger *zap.Logger) *MCPRegistryService {
	return &MCPRegistryService{
		mcpRepo: mcpRepo,
		client:  &http.Client{Timeout: pingTimeout},
		logger:  logger,
	}
}

func (s *MCPRegistryService) Create(ctx context.Context, req *dto.MCPServiceRequest) (*dto.MCPServiceResponse, error) {
	transport := models.MCPTransport(req.Transport)
	switch transport {
	case models.MCPTransportHTTP, models.MCPTransportSSE, models.MCPTransportStdio:
	default:
		return nil, ErrValidation
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now()
	svc := &models.MCPService{
		ID:          uuid.New(),
		Name:        req.Name,
		Endpoint:    req.Endpoint,
		Transport:   transport,
		Description: req.Description,
		Enabled:     enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.mcpRepo.Create(ctx, svc); err != nil {
		return nil, err
	}

	resp := mcpToResponse(svc)
	return &resp, nil
}

func (s *MCPRegistryService) Get(ctx context.Context, id uuid.UUID) (*dto.MCPServiceResponse, error) {
	svc, err := s.mcpRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := mcpToResponse(svc)
	return &resp, nil
}

func (s *MCPRegistryService) List(ctx context.Context) ([]dto.MCPServiceResponse, error) {
	services, err := s.mcpRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MCPServiceResponse, len(services))
	for i, svc := range services {
		responses[i] = mcpToResponse(svc)
	}
	return responses, nil
}

func (s *MCPRegistryService) Update(ctx context.Context, id uuid.UUID, req *dto.MCPServiceRequest) (*dto.MCPServiceResponse, error) {
	svc, err := s.mcpRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Endpoint != "" {
		svc.Endpoint = req.Endpoint
	}
	if req.Transport != "" {
		transport := models.MCPTransport(req.Transport)
		switch transport {
		case models.MCPTransportHTTP, models.MCPTransportSSE, models.MCPTransportStdio:
			svc.Transport = transport
		default:
			return nil, ErrValidation
		}
	}
	if req.Description != "" {
		svc.Description = req.Description
	}
	if req.Enabled != nil {
		svc.Enabled = *req.Enabled
	}
	svc.UpdatedAt = time.Now()

	if err := s.mcpRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	resp := mcpToResponse(svc)
	return &resp, nil
}

func (s *MCPRegistryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.mcpRepo.Delete(ctx, id)
}

// Ping probes the service endpoint over HTTP and records the outcome.
// Stdio transports have nothing to probe.
func (s *MCPRegistryService) Ping(ctx context.Context, id uuid.UUID) (*dto.PingResponse, error) {
	svc, err := s.mcpRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if svc.Transport == models.MCPTransportStdio {
		return nil, fmt.Errorf("%w: stdio services cannot be probed", ErrValidation)
	}

	started := time.Now()
	status := s.probe(ctx, svc.Endpoint)
	latency := time.Since(started)

	if err := s.mcpRepo.RecordPing(ctx, id, started, status); err != nil {
		s.logger.Warn("ping record failed", zap.Error(err))
	}

	return &dto.PingResponse{Status: status, LatencyMS: latency.Milliseconds()}, nil
}

func (s *MCPRegistryService) probe(ctx context.Context, endpoint string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "unreachable"
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "unreachable"
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "unhealthy"
	}
	return "healthy"
}

func mcpToResponse(svc *models.MCPService) dto.MCPServiceResponse {
	resp := dto.MCPServiceResponse{
		ID:          svc.ID.String(),
		Name:        svc.Name,
		Endpoint:    svc.Endpoint,
		Transport:   string(svc.Transport),
		Description: svc.Description,
		Enabled:     svc.Enabled,
		LastStatus:  svc.LastStatus,
		CreatedAt:   svc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   svc.UpdatedAt.Format(time.RFC3339),
	}
	if svc.LastPingAt != nil {
		resp.LastPingAt = svc.LastPingAt.Format(time.RFC3339)
	}
	return resp
}
