package repository

import (
	"context"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var questionColumns = []string{
	"id", "assistant_id", "content", "answer", "hit_count", "enabled", "created_at", "updated_at",
}

type QuestionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewQuestionRepository(db *pgxpool.Pool, logger *zap.Logger) *QuestionRepository {
	return &QuestionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	query := squirrel.Insert("questions").
		Columns(questionColumns...).
		Values(q.ID, q.AssistantID, q.Content, q.Answer, q.HitCount, q.Enabled, q.CreatedAt, q.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	query := squirrel.Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var q models.Question
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&q.ID, &q.AssistantID, &q.Content, &q.Answer, &q.HitCount, &q.Enabled, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

func (r *QuestionRepository) ListByAssistant(ctx context.Context, assistantID uuid.UUID, limit, offset int) ([]*models.Question, error) {
	query := squirrel.Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"assistant_id": assistantID}).
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

	var out []*models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(
			&q.ID, &q.AssistantID, &q.Content, &q.Answer, &q.HitCount, &q.Enabled, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &q)
	}

	return out, rows.Err()
}

// FindMatch looks up an enabled question whose content equals the normalized
// user message.
func (r *QuestionRepository) FindMatch(ctx context.Context, assistantID uuid.UUID, content string) (*models.Question, error) {
	query := squirrel.Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"assistant_id": assistantID, "enabled": true}).
		Where("LOWER(TRIM(content)) = LOWER(TRIM(?))", content).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var q models.Question
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&q.ID, &q.AssistantID, &q.Content, &q.Answer, &q.HitCount, &q.Enabled, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

func (r *QuestionRepository) IncrementHitCount(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Update("questions").
		Set("hit_count", squirrel.Expr("hit_count + 1")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuestionRepository) Update(ctx context.Context, q *models.Question) error {
	query := squirrel.Update("questions").
		Set("content", q.Content).
		Set("answer", q.Answer).
		Set("enabled", q.Enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": q.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("questions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
