package repository

import (
	"context"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var kbColumns = []string{
	"id", "owner_id", "name", "description", "embedding_model",
	"chunk_size", "chunk_overlap", "created_at", "updated_at",
}

type KnowledgeBaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeBaseRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *KnowledgeBaseRepository) Create(ctx context.Context, kb *models.KnowledgeBase) error {
	query := squirrel.Insert("knowledge_bases").
		Columns(kbColumns...).
		Values(kb.ID, kb.OwnerID, kb.Name, kb.Description, kb.EmbeddingModel,
			kb.ChunkSize, kb.ChunkOverlap, kb.CreatedAt, kb.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *KnowledgeBaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeBase, error) {
	query := squirrel.Select(kbColumns...).
		From("knowledge_bases").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var kb models.KnowledgeBase
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&kb.ID, &kb.OwnerID, &kb.Name, &kb.Description, &kb.EmbeddingModel,
		&kb.ChunkSize, &kb.ChunkOverlap, &kb.CreatedAt, &kb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &kb, nil
}

func (r *KnowledgeBaseRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.KnowledgeBase, error) {
	query := squirrel.Select(kbColumns...).
		From("knowledge_bases").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.KnowledgeBase
	for rows.Next() {
		var kb models.KnowledgeBase
		if err := rows.Scan(
			&kb.ID, &kb.OwnerID, &kb.Name, &kb.Description, &kb.EmbeddingModel,
			&kb.ChunkSize, &kb.ChunkOverlap, &kb.CreatedAt, &kb.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &kb)
	}

	return out, rows.Err()
}

func (r *KnowledgeBaseRepository) Update(ctx context.Context, kb *models.KnowledgeBase) error {
	query := squirrel.Update("knowledge_bases").
		Set("name", kb.Name).
		Set("description", kb.Description).
		Set("embedding_model", kb.EmbeddingModel).
		Set("chunk_size", kb.ChunkSize).
		Set("chunk_overlap", kb.ChunkOverlap).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": kb.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *KnowledgeBaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("knowledge_bases").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
