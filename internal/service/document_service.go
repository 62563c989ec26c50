package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"policyhub/internal/dto"
	"policyhub/internal/llm"
	"policyhub/internal/models"
	"policyhub/internal/repository"
	"policyhub/internal/vectorstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ingestPublisher enqueues ingestion jobs. Nil in the worker binary, which
// consumes instead of publishing.
type ingestPublisher interface {
	PublishIngest(ctx context.Context, documentID string) error
}

type DocumentService struct {
	docRepo      *repository.DocumentRepository
	chunkRepo    *repository.ChunkRepository
	kbRepo       *repository.KnowledgeBaseRepository
	providerRepo *repository.ProviderRepository
	registry     *llm.Registry
	store        vectorstore.VectorStore
	publisher    ingestPublisher
	permissions  *PermissionService
	uploadDir    string
	batchSize    int
	logger       *zap.Logger
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	chunkRepo *repository.ChunkRepository,
	kbRepo *repository.KnowledgeBaseRepository,
	providerRepo *repository.ProviderRepository,
	registry *llm.Registry,
	store vectorstore.VectorStore,
	publisher ingestPublisher,
	permissions *PermissionService,
	uploadDir string,
	batchSize int,
	logger *zap.Logger,
) *DocumentService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}
	if batchSize <= 0 {
		batchSize = 32
	}

	return &DocumentService{
		docRepo:      docRepo,
		chunkRepo:    chunkRepo,
		kbRepo:       kbRepo,
		providerRepo: providerRepo,
		registry:     registry,
		store:        store,
		publisher:    publisher,
		permissions:  permissions,
		uploadDir:    uploadDir,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Upload stores the file, creates a pending document row and enqueues the
// ingestion job.
func (s *DocumentService) Upload(ctx context.Context, userID uuid.UUID, role models.UserRole, kbID uuid.UUID, fileName, contentType string, file io.Reader) (*dto.DocumentResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, kbID, models.PermissionWrite); err != nil {
		return nil, err
	}

	docID := uuid.New()
	filePath := filepath.Join(s.uploadDir, docID.String()+filepath.Ext(fileName))

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	fileSize, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:          docID,
		KBID:        kbID,
		FileName:    fileName,
		FileSize:    fileSize,
		ContentType: contentType,
		FilePath:    filePath,
		Status:      models.DocumentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	if err := s.publisher.PublishIngest(ctx, doc.ID.String()); err != nil {
		s.logger.Error("ingest job publish failed", zap.String("document_id", doc.ID.String()), zap.Error(err))
		_ = s.docRepo.UpdateStatus(ctx, doc.ID, models.DocumentFailed, "failed to enqueue ingestion", 0)
		doc.Status = models.DocumentFailed
	}

	resp := documentToResponse(doc)
	return &resp, nil
}

func (s *DocumentService) Get(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, doc.KBID, models.PermissionRead); err != nil {
		return nil, err
	}

	resp := documentToResponse(doc)
	return &resp, nil
}

func (s *DocumentService) ListByKnowledgeBase(ctx context.Context, userID uuid.UUID, role models.UserRole, kbID uuid.UUID, limit, offset int) ([]dto.DocumentResponse, error) {
	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, kbID, models.PermissionRead); err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListByKnowledgeBase(ctx, kbID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = documentToResponse(doc)
	}
	return responses, nil
}

func (s *DocumentService) Delete(ctx context.Context, userID uuid.UUID, role models.UserRole, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.permissions.Authorize(ctx, userID, role, models.ResourceKnowledgeBase, doc.KBID, models.PermissionWrite); err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("uploaded file removal failed", zap.String("path", doc.FilePath), zap.Error(err))
		}
	}
	return nil
}

// Ingest runs in the worker: claim the document, split it into overlapping
// chunks, embed them and store everything. Chunks are stored without
// embeddings when no embedding provider is configured; text retrieval
// still works over them.
func (s *DocumentService) Ingest(ctx context.Context, documentID uuid.UUID) error {
	claimed, err := s.docRepo.ClaimPending(ctx, documentID)
	if err != nil {
		return err
	}
	if !claimed {
		doc, err := s.docRepo.GetByID(ctx, documentID)
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("ingest job for missing document", zap.String("document_id", documentID.String()))
			return nil
		}
		if err != nil {
			return err
		}
		// Retried job: reclaim a failed document, skip anything else.
		if doc.Status != models.DocumentFailed {
			return nil
		}
		if err := s.docRepo.UpdateStatus(ctx, documentID, models.DocumentProcessing, "", 0); err != nil {
			return err
		}
	}

	if err := s.ingest(ctx, documentID); err != nil {
		if updateErr := s.docRepo.UpdateStatus(ctx, documentID, models.DocumentFailed, err.Error(), 0); updateErr != nil {
			s.logger.Error("status update failed", zap.Error(updateErr))
		}
		return err
	}
	return nil
}

func (s *DocumentService) ingest(ctx context.Context, documentID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	kb, err := s.kbRepo.GetByID(ctx, doc.KBID)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return fmt.Errorf("read uploaded file: %w", err)
	}

	pieces := splitText(sanitizeUTF8(string(raw)), kb.ChunkSize, kb.ChunkOverlap)
	if len(pieces) == 0 {
		return errors.New("document produced no chunks")
	}

	embeddings, err := s.embedPieces(ctx, pieces)
	if err != nil {
		return err
	}

	// Replace any chunks from a previous failed attempt.
	if err := s.chunkRepo.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}

	now := time.Now()
	chunks := make([]*models.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &models.DocumentChunk{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			KBID:       doc.KBID,
			Seq:        i,
			Content:    piece,
			TokenCount: approxTokenCount(piece),
			CreatedAt:  now,
		}
		if embeddings != nil {
			chunks[i].Embedding = embeddings[i]
		}
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return err
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, models.DocumentReady, "", len(chunks)); err != nil {
		return err
	}

	s.logger.Info("document ingested",
		zap.String("document_id", documentID.String()),
		zap.Int("chunks", len(chunks)),
		zap.Bool("embedded", embeddings != nil))
	return nil
}

// embedPieces returns nil embeddings (not an error) when no embedding
// provider is available.
func (s *DocumentService) embedPieces(ctx context.Context, pieces []string) ([][]float32, error) {
	providerCfg, err := s.providerRepo.GetDefault(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("no model provider configured, storing chunks without embeddings")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.Get(ctx, providerCfg)
	if err != nil {
		return nil, err
	}
	embedder, ok := provider.(llm.Embedder)
	if !ok {
		s.logger.Warn("provider has no embeddings endpoint, storing chunks without embeddings",
			zap.String("provider", providerCfg.Name))
		return nil, nil
	}

	out := make([][]float32, 0, len(pieces))
	for start := 0; start < len(pieces); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		vectors, err := embedder.Embed(ctx, pieces[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch: %w", err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// splitText cuts text into rune-based windows of chunkSize with overlap
// carried between neighbours.
func splitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var pieces []string
	step := chunkSize - overlap
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := string(runes[start:end])
		if len(piece) > 0 {
			pieces = append(pieces, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return pieces
}

func documentToResponse(doc *models.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:              doc.ID.String(),
		KnowledgeBaseID: doc.KBID.String(),
		FileName:        doc.FileName,
		FileSize:        doc.FileSize,
		ContentType:     doc.ContentType,
		Status:          string(doc.Status),
		Error:           doc.Error,
		ChunkCount:      doc.ChunkCount,
		CreatedAt:       doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       doc.UpdatedAt.Format(time.RFC3339),
	}
}
