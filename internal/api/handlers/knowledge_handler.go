package handlers

import (
	"policyhub/internal/dto"
	"policyhub/internal/models"
	"policyhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type KnowledgeHandler struct {
	kbService  *service.KnowledgeBaseService
	docService *service.DocumentService
	retrieval  *service.RetrievalService
	perms      *service.PermissionService
	logger     *zap.Logger
}

func NewKnowledgeHandler(
	kbService *service.KnowledgeBaseService,
	docService *service.DocumentService,
	retrieval *service.RetrievalService,
	perms *service.PermissionService,
	logger *zap.Logger,
) *KnowledgeHandler {
	return &KnowledgeHandler{
		kbService:  kbService,
		docService: docService,
		retrieval:  retrieval,
		perms:      perms,
		logger:     logger,
	}
}

// Create godoc
// @Summary Create a knowledge base
// @Tags knowledge-bases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateKnowledgeBaseRequest true "Knowledge base"
// @Success 201 {object} dto.KnowledgeBaseResponse
// @Router /api/v1/knowledge-bases [post]
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateKnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	resp, err := h.kbService.Create(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List knowledge bases owned by the caller
// @Tags knowledge-bases
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.KnowledgeBaseResponse
// @Router /api/v1/knowledge-bases [get]
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := h.kbService.ListOwned(c.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get a knowledge base
// @Tags knowledge-bases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Knowledge base ID"
// @Success 200 {object} dto.KnowledgeBaseResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/knowledge-bases/{id} [get]
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.kbService.Get(c.Context(), userID, role, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary Update a knowledge base
// @Tags knowledge-bases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Knowledge base ID"
// @Param request body dto.UpdateKnowledgeBaseRequest true "Fields to update"
// @Success 200 {object} dto.KnowledgeBaseResponse
// @Router /api/v1/knowledge-bases/{id} [put]
func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateKnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp, err := h.kbService.Update(c.Context(), userID, role, id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a knowledge base
// @Tags knowledge-bases
// @Security BearerAuth
// @Param id path string true "Knowledge base ID"
// @Success 204
// @Router /api/v1/knowledge-bases/{id} [delete]
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.kbService.Delete(c.Context(), userID, role, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Search godoc
// @Summary Retrieve relevant chunks from a knowledge base
// @Description Vector search when embeddings exist, text search otherwise
// @Tags knowledge-bases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Knowledge base ID"
// @Param request body dto.SearchKnowledgeBaseRequest true "Query"
// @Success 200 {array} dto.ChunkResponse
// @Router /api/v1/knowledge-bases/{id}/search [post]
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.SearchKnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	if err := h.perms.Authorize(c.Context(), userID, role, models.ResourceKnowledgeBase, id, models.PermissionRead); err != nil {
		return respondError(c, h.logger, err)
	}

	chunks, err := h.retrieval.Search(c.Context(), id, req.Query, req.TopK)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := make([]dto.ChunkResponse, len(chunks))
	for i, chunk := range chunks {
		resp[i] = dto.ChunkResponse{
			ID:         chunk.ID.String(),
			DocumentID: chunk.DocumentID.String(),
			Seq:        chunk.Seq,
			Content:    chunk.Content,
			TokenCount: chunk.TokenCount,
		}
	}
	return c.JSON(resp)
}

// UploadDocument godoc
// @Summary Upload a document into a knowledge base
// @Description Stores the file, creates a pending document and enqueues ingestion
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Knowledge base ID"
// @Param file formData file true "Document file"
// @Success 201 {object} dto.DocumentResponse
// @Router /api/v1/knowledge-bases/{id}/documents [post]
func (h *KnowledgeHandler) UploadDocument(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	kbID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to read file"})
	}
	defer file.Close()

	resp, err := h.docService.Upload(c.Context(), userID, role, kbID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListDocuments godoc
// @Summary List documents in a knowledge base
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Knowledge base ID"
// @Success 200 {array} dto.DocumentResponse
// @Router /api/v1/knowledge-bases/{id}/documents [get]
func (h *KnowledgeHandler) ListDocuments(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	kbID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.docService.ListByKnowledgeBase(c.Context(), userID, role, kbID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/documents/{id} [get]
func (h *KnowledgeHandler) GetDocument(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.docService.Get(c.Context(), userID, role, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeleteDocument godoc
// @Summary Delete a document and its chunks
// @Tags documents
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 204
// @Router /api/v1/documents/{id} [delete]
func (h *KnowledgeHandler) DeleteDocument(c *fiber.Ctx) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.docService.Delete(c.Context(), userID, role, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
