package handlers

import (
	"policyhub/internal/dto"
	"policyhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type QuestionHandler struct {
	questionService *service.QuestionService
	logger          *zap.Logger
}

func NewQuestionHandler(questionService *service.QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Add a curated question to an assistant
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Param request body dto.CreateQuestionRequest true "Question"
// @Success 201 {object} dto.QuestionResponse
// @Router /api/v1/assistants/{id}/questions [post]
func (h *QuestionHandler) Create(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	assistantID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Content == "" || req.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content and answer are required"})
	}

	resp, err := h.questionService.Create(c.Context(), userID, role, assistantID, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List an assistant's curated questions
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Success 200 {array} dto.QuestionResponse
// @Router /api/v1/assistants/{id}/questions [get]
func (h *QuestionHandler) List(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	assistantID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.questionService.ListByAssistant(c.Context(), userID, role, assistantID,
		queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary Update a curated question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param qid path string true "Question ID"
// @Param request body dto.UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} dto.QuestionResponse
// @Router /api/v1/questions/{qid} [put]
func (h *QuestionHandler) Update(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	questionID, err := parseUUIDParam(c, "qid")
	if err != nil {
		return err
	}

	var req dto.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.questionService.Update(c.Context(), userID, role, questionID, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a curated question
// @Tags questions
// @Security BearerAuth
// @Param qid path string true "Question ID"
// @Success 204
// @Router /api/v1/questions/{qid} [delete]
func (h *QuestionHandler) Delete(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	questionID, err := parseUUIDParam(c, "qid")
	if err != nil {
		return err
	}

	if err := h.questionService.Delete(c.Context(), userID, role, questionID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
