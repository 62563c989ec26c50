package repository

import (
	"context"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var assistantColumns = []string{
	"id", "owner_id", "provider_id", "name", "description", "system_prompt",
	"model", "temperature", "status", "created_at", "updated_at",
}

type AssistantRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAssistantRepository(db *pgxpool.Pool, logger *zap.Logger) *AssistantRepository {
	return &AssistantRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AssistantRepository) Create(ctx context.Context, a *models.Assistant) error {
	query := squirrel.Insert("assistants").
		Columns(assistantColumns...).
		Values(a.ID, a.OwnerID, a.ProviderID, a.Name, a.Description, a.SystemPrompt,
			a.Model, a.Temperature, a.Status, a.CreatedAt, a.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AssistantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assistant, error) {
	query := squirrel.Select(assistantColumns...).
		From("assistants").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var a models.Assistant
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&a.ID, &a.OwnerID, &a.ProviderID, &a.Name, &a.Description, &a.SystemPrompt,
		&a.Model, &a.Temperature, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// ListVisible returns assistants the user owns plus assistants granted via
// resource_permissions.
func (r *AssistantRepository) ListVisible(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Assistant, error) {
	query := squirrel.Select(prefixColumns("a", assistantColumns)...).
		From("assistants a").
		LeftJoin("resource_permissions p ON p.resource_type = 'assistant' AND p.resource_id = a.id AND p.user_id = ?", userID).
		Where(squirrel.Or{
			squirrel.Eq{"a.owner_id": userID},
			squirrel.NotEq{"p.id": nil},
		}).
		OrderBy("a.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanList(ctx, sql, args)
}

func (r *AssistantRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Assistant, error) {
	query := squirrel.Select(assistantColumns...).
		From("assistants").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanList(ctx, sql, args)
}

func (r *AssistantRepository) scanList(ctx context.Context, sql string, args []interface{}) ([]*models.Assistant, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Assistant
	for rows.Next() {
		var a models.Assistant
		if err := rows.Scan(
			&a.ID, &a.OwnerID, &a.ProviderID, &a.Name, &a.Description, &a.SystemPrompt,
			&a.Model, &a.Temperature, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}

	return out, rows.Err()
}

func (r *AssistantRepository) Update(ctx context.Context, a *models.Assistant) error {
	query := squirrel.Update("assistants").
		Set("provider_id", a.ProviderID).
		Set("name", a.Name).
		Set("description", a.Description).
		Set("system_prompt", a.SystemPrompt).
		Set("model", a.Model).
		Set("temperature", a.Temperature).
		Set("status", a.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AssistantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("assistants").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AssistantRepository) LinkKnowledgeBase(ctx context.Context, assistantID, kbID uuid.UUID) error {
	query := squirrel.Insert("assistant_knowledge_bases").
		Columns("assistant_id", "kb_id").
		Values(assistantID, kbID).
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AssistantRepository) UnlinkKnowledgeBase(ctx context.Context, assistantID, kbID uuid.UUID) error {
	query := squirrel.Delete("assistant_knowledge_bases").
		Where(squirrel.Eq{"assistant_id": assistantID, "kb_id": kbID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AssistantRepository) LinkedKnowledgeBaseIDs(ctx context.Context, assistantID uuid.UUID) ([]uuid.UUID, error) {
	query := squirrel.Select("kb_id").
		From("assistant_knowledge_bases").
		Where(squirrel.Eq{"assistant_id": assistantID}).
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

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func prefixColumns(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
