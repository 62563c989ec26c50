package repository

import (
	"context"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type ChunkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChunkRepository(db *pgxpool.Pool, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ChunkRepository) InsertBatch(ctx context.Context, chunks []*models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := squirrel.Insert("document_chunks").
		Columns("id", "document_id", "kb_id", "seq", "content", "embedding", "token_count", "created_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, ch := range chunks {
		var emb interface{}
		if len(ch.Embedding) > 0 {
			emb = pgvector.NewVector(ch.Embedding)
		}
		query = query.Values(ch.ID, ch.DocumentID, ch.KBID, ch.Seq, ch.Content, emb, ch.TokenCount, ch.CreatedAt)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SearchSimilar returns the topK chunks of a knowledge base closest to the
// query embedding by cosine distance.
func (r *ChunkRepository) SearchSimilar(ctx context.Context, kbID uuid.UUID, embedding []float32, topK int) ([]*models.DocumentChunk, error) {
	query := squirrel.Select("id", "document_id", "kb_id", "seq", "content", "embedding", "token_count", "created_at").
		From("document_chunks").
		Where(squirrel.Eq{"kb_id": kbID}).
		Where(squirrel.NotEq{"embedding": nil}).
		OrderByClause("embedding <=> ?", pgvector.NewVector(embedding)).
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanChunks(ctx, sql, args)
}

// SearchText is the ILIKE fallback used when no embedding is available.
func (r *ChunkRepository) SearchText(ctx context.Context, kbID uuid.UUID, queryText string, topK int) ([]*models.DocumentChunk, error) {
	query := squirrel.Select("id", "document_id", "kb_id", "seq", "content", "embedding", "token_count", "created_at").
		From("document_chunks").
		Where(squirrel.Eq{"kb_id": kbID}).
		Where(squirrel.ILike{"content": "%" + queryText + "%"}).
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanChunks(ctx, sql, args)
}

func (r *ChunkRepository) scanChunks(ctx context.Context, sql string, args []interface{}) ([]*models.DocumentChunk, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DocumentChunk
	for rows.Next() {
		var (
			ch  models.DocumentChunk
			emb *pgvector.Vector
		)
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.KBID, &ch.Seq, &ch.Content, &emb, &ch.TokenCount, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		if emb != nil {
			ch.Embedding = emb.Slice()
		}
		out = append(out, &ch)
	}

	return out, rows.Err()
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	query := squirrel.Delete("document_chunks").
		Where(squirrel.Eq{"document_id": documentID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("document_chunks").
		Where(squirrel.Eq{"document_id": documentID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
