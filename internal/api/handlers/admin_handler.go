package handlers

import (
	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/service"
	"policyhub/pkg/config"
	"policyhub/pkg/redis"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AdminHandler struct {
	userService     *service.UserService
	providerService *service.ProviderService
	mcpService      *service.MCPRegistryService
	searchService   *service.SearchService
	permService     *service.PermissionService
	cfg             *config.Config
	vectorBackend   string
	db              *pgxpool.Pool
	cache           *redis.Store
	logger          *zap.Logger
}

func NewAdminHandler(
	userService *service.UserService,
	providerService *service.ProviderService,
	mcpService *service.MCPRegistryService,
	searchService *service.SearchService,
	permService *service.PermissionService,
	cfg *config.Config,
	vectorBackend string,
	db *pgxpool.Pool,
	cache *redis.Store,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		providerService: providerService,
		mcpService:      mcpService,
		searchService:   searchService,
		permService:     permService,
		cfg:             cfg,
		vectorBackend:   vectorBackend,
		db:              db,
		cache:           cache,
		logger:          logger,
	}
}

// ListUsers godoc
// @Summary List registered users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserResponse
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	resp, err := h.userService.List(c.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// UpdateUserRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.UserResponse
// @Router /api/admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.userService.UpdateRole(c.Context(), id, req.Role)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateProvider godoc
// @Summary Register a model provider
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProviderRequest true "Provider"
// @Success 201 {object} dto.ProviderResponse
// @Router /api/admin/model-providers [post]
func (h *AdminHandler) CreateProvider(c *fiber.Ctx) error {
	var req dto.ProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.providerService.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListProviders godoc
// @Summary List model providers
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProviderResponse
// @Router /api/admin/model-providers [get]
func (h *AdminHandler) ListProviders(c *fiber.Ctx) error {
	resp, err := h.providerService.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// GetProvider godoc
// @Summary Get a model provider
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Success 200 {object} dto.ProviderResponse
// @Router /api/admin/model-providers/{id} [get]
func (h *AdminHandler) GetProvider(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.providerService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// UpdateProvider godoc
// @Summary Update a model provider
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Param request body dto.ProviderRequest true "Fields to update"
// @Success 200 {object} dto.ProviderResponse
// @Router /api/admin/model-providers/{id} [put]
func (h *AdminHandler) UpdateProvider(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.providerService.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeleteProvider godoc
// @Summary Delete a model provider
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Success 204
// @Router /api/admin/model-providers/{id} [delete]
func (h *AdminHandler) DeleteProvider(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.providerService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateMCPService godoc
// @Summary Register an MCP service
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MCPServiceRequest true "Service"
// @Success 201 {object} dto.MCPServiceResponse
// @Router /api/admin/mcp-services [post]
func (h *AdminHandler) CreateMCPService(c *fiber.Ctx) error {
	var req dto.MCPServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.mcpService.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListMCPServices godoc
// @Summary List registered MCP services
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MCPServiceResponse
// @Router /api/admin/mcp-services [get]
func (h *AdminHandler) ListMCPServices(c *fiber.Ctx) error {
	resp, err := h.mcpService.List(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// GetMCPService godoc
// @Summary Get an MCP service
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 200 {object} dto.MCPServiceResponse
// @Router /api/admin/mcp-services/{id} [get]
func (h *AdminHandler) GetMCPService(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.mcpService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// UpdateMCPService godoc
// @Summary Update an MCP service
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Param request body dto.MCPServiceRequest true "Fields to update"
// @Success 200 {object} dto.MCPServiceResponse
// @Router /api/admin/mcp-services/{id} [put]
func (h *AdminHandler) UpdateMCPService(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.MCPServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.mcpService.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeleteMCPService godoc
// @Summary Delete an MCP service
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 204
// @Router /api/admin/mcp-services/{id} [delete]
func (h *AdminHandler) DeleteMCPService(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.mcpService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PingMCPService godoc
// @Summary Probe an MCP service endpoint
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 200 {object} dto.PingResponse
// @Failure 400 {object} map[string]string
// @Router /api/admin/mcp-services/{id}/ping [post]
func (h *AdminHandler) PingMCPService(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.mcpService.Ping(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// CreatePortal godoc
// @Summary Register a policy portal
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PortalRequest true "Portal"
// @Success 201 {object} dto.PortalResponse
// @Failure 409 {object} map[string]string
// @Router /api/admin/portals [post]
func (h *AdminHandler) CreatePortal(c *fiber.Ctx) error {
	var req dto.PortalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.searchService.CreatePortal(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListPortals godoc
// @Summary List policy portals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PortalResponse
// @Router /api/admin/portals [get]
func (h *AdminHandler) ListPortals(c *fiber.Ctx) error {
	resp, err := h.searchService.ListPortals(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// GetPortal godoc
// @Summary Get a policy portal
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Portal ID"
// @Success 200 {object} dto.PortalResponse
// @Router /api/admin/portals/{id} [get]
func (h *AdminHandler) GetPortal(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.searchService.GetPortal(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// UpdatePortal godoc
// @Summary Update a policy portal
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Portal ID"
// @Param request body dto.PortalRequest true "Fields to update"
// @Success 200 {object} dto.PortalResponse
// @Router /api/admin/portals/{id} [put]
func (h *AdminHandler) UpdatePortal(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.PortalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.searchService.UpdatePortal(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeletePortal godoc
// @Summary Delete a policy portal
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Portal ID"
// @Success 204
// @Router /api/admin/portals/{id} [delete]
func (h *AdminHandler) DeletePortal(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.searchService.DeletePortal(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GrantPermission godoc
// @Summary Grant a user access to a resource
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GrantPermissionRequest true "Grant"
// @Success 201 {object} dto.PermissionResponse
// @Router /api/admin/permissions [post]
func (h *AdminHandler) GrantPermission(c *fiber.Ctx) error {
	var req dto.GrantPermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.permService.Grant(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// RevokePermission godoc
// @Summary Revoke a user's access to a resource
// @Tags admin
// @Security BearerAuth
// @Param user_id query string true "User ID"
// @Param resource_type query string true "assistant or knowledge_base"
// @Param resource_id query string true "Resource ID"
// @Success 204
// @Router /api/admin/permissions [delete]
func (h *AdminHandler) RevokePermission(c *fiber.Ctx) error {
	userID, err := uuidFromString(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user_id"})
	}
	resourceID, err := uuidFromString(c.Query("resource_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource_id"})
	}
	resourceType := models.ResourceType(c.Query("resource_type"))
	if resourceType != models.ResourceAssistant && resourceType != models.ResourceKnowledgeBase {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource_type"})
	}

	if err := h.permService.Revoke(c.Context(), userID, resourceType, resourceID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPermissions godoc
// @Summary List the grants on a resource
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param resource_type query string true "assistant or knowledge_base"
// @Param resource_id query string true "Resource ID"
// @Success 200 {array} dto.PermissionResponse
// @Router /api/admin/permissions [get]
func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	resourceID, err := uuidFromString(c.Query("resource_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource_id"})
	}
	resourceType := models.ResourceType(c.Query("resource_type"))
	if resourceType != models.ResourceAssistant && resourceType != models.ResourceKnowledgeBase {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource_type"})
	}

	resp, err := h.permService.ListByResource(c.Context(), resourceType, resourceID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// SystemConfig godoc
// @Summary Effective runtime configuration
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SystemConfigResponse
// @Router /api/admin/system/config [get]
func (h *AdminHandler) SystemConfig(c *fiber.Ctx) error {
	return c.JSON(dto.SystemConfigResponse{
		VectorStoreBackend: h.vectorBackend,
		SearchQualityMin:   h.cfg.Search.QualityThreshold,
		SearchTimeoutSec:   int(h.cfg.Search.RequestTimeout.Seconds()),
		SearchMaxFetches:   h.cfg.Search.MaxConcurrency,
		CrawlerRetries:     h.cfg.Search.CrawlerRetries,
		ChatContextWindow:  h.cfg.Chat.ContextWindow,
	})
}

// SystemHealth godoc
// @Summary Database and cache health
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/admin/system/health [get]
func (h *AdminHandler) SystemHealth(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok", Database: "up", Redis: "up"}

	if err := h.db.Ping(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
	}
	if err := h.cache.Ping(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Redis = "down"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
