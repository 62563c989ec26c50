package handlers

import (
	"policyhub/internal/dto"
	"policyhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
	logger        *zap.Logger
}

func NewSearchHandler(searchService *service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// SearchPolicies godoc
// @Summary Tiered policy search
// @Description Searches the region's portal, escalating to the provincial portal and then a web search engine when result quality is low. Always returns 200; failures produce an empty record list with a diagnostic summary.
// @Tags search
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PolicySearchRequest true "Search request"
// @Success 200 {object} dto.PolicySearchResponse
// @Failure 400 {object} map[string]string
// @Router /api/frontend/search/policies [post]
func (h *SearchHandler) SearchPolicies(c *fiber.Ctx) error {
	var req dto.PolicySearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	resp, err := h.searchService.Search(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}
