package handlers

import (
	"policyhub/internal/dto"
	"policyhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AssistantHandler struct {
	assistantService *service.AssistantService
	logger           *zap.Logger
}

func NewAssistantHandler(assistantService *service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		logger:           logger,
	}
}

// Create godoc
// @Summary Create an assistant
// @Tags assistants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAssistantRequest true "Assistant"
// @Success 201 {object} dto.AssistantResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/assistants [post]
func (h *AssistantHandler) Create(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateAssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	resp, err := h.assistantService.Create(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List assistants owned by the caller
// @Tags assistants
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.AssistantResponse
// @Router /api/v1/assistants [get]
func (h *AssistantHandler) List(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := h.assistantService.ListOwned(c.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// ListVisible godoc
// @Summary List assistants visible to the caller
// @Description Owned assistants plus assistants shared through permissions
// @Tags assistants
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AssistantResponse
// @Router /api/frontend/assistants [get]
func (h *AssistantHandler) ListVisible(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := h.assistantService.ListVisible(c.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get an assistant
// @Tags assistants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Success 200 {object} dto.AssistantResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/assistants/{id} [get]
func (h *AssistantHandler) Get(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.assistantService.Get(c.Context(), userID, role, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary Update an assistant
// @Tags assistants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Param request body dto.UpdateAssistantRequest true "Fields to update"
// @Success 200 {object} dto.AssistantResponse
// @Failure 403 {object} map[string]string
// @Router /api/v1/assistants/{id} [put]
func (h *AssistantHandler) Update(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateAssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.assistantService.Update(c.Context(), userID, role, id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete an assistant
// @Tags assistants
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Router /api/v1/assistants/{id} [delete]
func (h *AssistantHandler) Delete(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.assistantService.Delete(c.Context(), userID, role, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LinkKnowledgeBase godoc
// @Summary Attach a knowledge base to an assistant
// @Tags assistants
// @Accept json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Param request body dto.LinkKnowledgeBaseRequest true "Knowledge base"
// @Success 204
// @Router /api/v1/assistants/{id}/knowledge-bases [post]
func (h *AssistantHandler) LinkKnowledgeBase(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.LinkKnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	kbID, err := uuidFromString(req.KnowledgeBaseID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid kb_id"})
	}

	if err := h.assistantService.LinkKnowledgeBase(c.Context(), userID, role, id, kbID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlinkKnowledgeBase godoc
// @Summary Detach a knowledge base from an assistant
// @Tags assistants
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Param kbID path string true "Knowledge base ID"
// @Success 204
// @Router /api/v1/assistants/{id}/knowledge-bases/{kbID} [delete]
func (h *AssistantHandler) UnlinkKnowledgeBase(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	kbID, err := parseUUIDParam(c, "kbID")
	if err != nil {
		return err
	}

	if err := h.assistantService.UnlinkKnowledgeBase(c.Context(), userID, role, id, kbID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
