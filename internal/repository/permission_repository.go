package repository

import (
	"context"
	"errors"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var permissionColumns = []string{
	"id", "user_id", "resource_type", "resource_id", "permission", "created_at",
}

type PermissionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPermissionRepository(db *pgxpool.Pool, logger *zap.Logger) *PermissionRepository {
	return &PermissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PermissionRepository) Grant(ctx context.Context, p *models.ResourcePermission) error {
	query := squirrel.Insert("resource_permissions").
		Columns(permissionColumns...).
		Values(p.ID, p.UserID, p.ResourceType, p.ResourceID, p.Permission, p.CreatedAt).
		Suffix("ON CONFLICT (user_id, resource_type, resource_id) DO UPDATE SET permission = EXCLUDED.permission").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PermissionRepository) Revoke(ctx context.Context, userID uuid.UUID, resourceType models.ResourceType, resourceID uuid.UUID) error {
	query := squirrel.Delete("resource_permissions").
		Where(squirrel.Eq{
			"user_id":       userID,
			"resource_type": resourceType,
			"resource_id":   resourceID,
		}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Get returns the permission a user holds on a resource, or nil when none
// is granted.
func (r *PermissionRepository) Get(ctx context.Context, userID uuid.UUID, resourceType models.ResourceType, resourceID uuid.UUID) (*models.ResourcePermission, error) {
	query := squirrel.Select(permissionColumns...).
		From("resource_permissions").
		Where(squirrel.Eq{
			"user_id":       userID,
			"resource_type": resourceType,
			"resource_id":   resourceID,
		}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.ResourcePermission
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.UserID, &p.ResourceType, &p.ResourceID, &p.Permission, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PermissionRepository) ListByResource(ctx context.Context, resourceType models.ResourceType, resourceID uuid.UUID) ([]*models.ResourcePermission, error) {
	query := squirrel.Select(permissionColumns...).
		From("resource_permissions").
		Where(squirrel.Eq{"resource_type": resourceType, "resource_id": resourceID}).
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

	var out []*models.ResourcePermission
	for rows.Next() {
		var p models.ResourcePermission
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.ResourceType, &p.ResourceID, &p.Permission, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}

	return out, rows.Err()
}
