package repository

import (
	"context"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var providerColumns = []string{
	"id", "name", "kind", "base_url", "api_key", "model", "embedding_model",
	"enabled", "created_at", "updated_at",
}

type ProviderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProviderRepository(db *pgxpool.Pool, logger *zap.Logger) *ProviderRepository {
	return &ProviderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProviderRepository) Create(ctx context.Context, p *models.ModelProvider) error {
	query := squirrel.Insert("model_providers").
		Columns(providerColumns...).
		Values(p.ID, p.Name, p.Kind, p.BaseURL, p.APIKey, p.Model, p.EmbeddingModel,
			p.Enabled, p.CreatedAt, p.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ModelProvider, error) {
	query := squirrel.Select(providerColumns...).
		From("model_providers").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.ModelProvider
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.Name, &p.Kind, &p.BaseURL, &p.APIKey, &p.Model, &p.EmbeddingModel,
		&p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *ProviderRepository) List(ctx context.Context) ([]*models.ModelProvider, error) {
	query := squirrel.Select(providerColumns...).
		From("model_providers").
		OrderBy("created_at ASC").
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

	var out []*models.ModelProvider
	for rows.Next() {
		var p models.ModelProvider
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Kind, &p.BaseURL, &p.APIKey, &p.Model, &p.EmbeddingModel,
			&p.Enabled, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}

	return out, rows.Err()
}

// GetDefault returns the oldest enabled provider; used when an assistant has
// no provider assigned.
func (r *ProviderRepository) GetDefault(ctx context.Context) (*models.ModelProvider, error) {
	query := squirrel.Select(providerColumns...).
		From("model_providers").
		Where(squirrel.Eq{"enabled": true}).
		OrderBy("created_at ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.ModelProvider
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.Name, &p.Kind, &p.BaseURL, &p.APIKey, &p.Model, &p.EmbeddingModel,
		&p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *ProviderRepository) Update(ctx context.Context, p *models.ModelProvider) error {
	query := squirrel.Update("model_providers").
		Set("name", p.Name).
		Set("kind", p.Kind).
		Set("base_url", p.BaseURL).
		Set("api_key", p.APIKey).
		Set("model", p.Model).
		Set("embedding_model", p.EmbeddingModel).
		Set("enabled", p.Enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("model_providers").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
