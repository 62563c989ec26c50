package handlers

import (
	"policyhub/internal/dto"
	"policyhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// CreateConversation godoc
// @Summary Start a conversation with an assistant
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConversationRequest true "Conversation"
// @Success 201 {object} dto.ConversationResponse
// @Failure 404 {object} map[string]string
// @Router /api/frontend/conversations [post]
func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.chatService.CreateConversation(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListConversations godoc
// @Summary List the caller's conversations
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ConversationResponse
// @Router /api/frontend/conversations [get]
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := h.chatService.ListConversations(c.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeleteConversation godoc
// @Summary Delete a conversation and its messages
// @Tags chat
// @Security BearerAuth
// @Param cid path string true "Conversation handle"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/frontend/conversations/{cid} [delete]
func (h *ChatHandler) DeleteConversation(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.chatService.DeleteConversation(c.Context(), userID, c.Params("cid")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SendMessage godoc
// @Summary Send a message and receive the assistant reply
// @Description Curated questions answer instantly; otherwise the provider is called with knowledge base context
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Conversation handle"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 200 {object} dto.ChatResponse
// @Failure 502 {object} map[string]string
// @Router /api/frontend/conversations/{cid}/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.chatService.SendMessage(c.Context(), userID, c.Params("cid"), req.Content)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// ListMessages godoc
// @Summary Page through conversation messages, newest first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param cid path string true "Conversation handle"
// @Param limit query int false "Page size"
// @Param before_id query int false "Return messages older than this id"
// @Success 200 {array} dto.MessageResponse
// @Router /api/frontend/conversations/{cid}/messages [get]
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := h.chatService.ListMessages(c.Context(), userID, c.Params("cid"),
		queryInt(c, "limit", 20), int64(queryInt(c, "before_id", 0)))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}
