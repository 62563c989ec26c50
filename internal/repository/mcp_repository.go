package repository

import (
	"context"
	"time"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var mcpColumns = []string{
	"id", "name", "endpoint", "transport", "description", "enabled",
	"last_ping_at", "last_status", "created_at", "updated_at",
}

type MCPRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMCPRepository(db *pgxpool.Pool, logger *zap.Logger) *MCPRepository {
	return &MCPRepository{
		db:     db,
		logger: logger,
	}
}

func (r *MCPRepository) Create(ctx context.Context, s *models.MCPService) error {
	query := squirrel.Insert("mcp_services").
		Columns(mcpColumns...).
		Values(s.ID, s.Name, s.Endpoint, s.Transport, s.Description, s.Enabled,
			s.LastPingAt, s.LastStatus, s.CreatedAt, s.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MCPRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MCPService, error) {
	query := squirrel.Select(mcpColumns...).
		From("mcp_services").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.MCPService
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.Name, &s.Endpoint, &s.Transport, &s.Description, &s.Enabled,
		&s.LastPingAt, &s.LastStatus, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *MCPRepository) List(ctx context.Context) ([]*models.MCPService, error) {
	query := squirrel.Select(mcpColumns...).
		From("mcp_services").
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

	var out []*models.MCPService
	for rows.Next() {
		var s models.MCPService
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Endpoint, &s.Transport, &s.Description, &s.Enabled,
			&s.LastPingAt, &s.LastStatus, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}

	return out, rows.Err()
}

func (r *MCPRepository) Update(ctx context.Context, s *models.MCPService) error {
	query := squirrel.Update("mcp_services").
		Set("name", s.Name).
		Set("endpoint", s.Endpoint).
		Set("transport", s.Transport).
		Set("description", s.Description).
		Set("enabled", s.Enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MCPRepository) RecordPing(ctx context.Context, id uuid.UUID, at time.Time, status string) error {
	query := squirrel.Update("mcp_services").
		Set("last_ping_at", at).
		Set("last_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MCPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("mcp_services").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
