package repository

import (
	"context"
	"encoding/json"
	"errors"

	"policyhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var portalColumns = []string{
	"id", "region", "name", "search_url", "parent_region", "selectors",
	"enabled", "created_at", "updated_at",
}

type PortalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPortalRepository(db *pgxpool.Pool, logger *zap.Logger) *PortalRepository {
	return &PortalRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PortalRepository) Create(ctx context.Context, p *models.PolicyPortal) error {
	selectors, err := json.Marshal(p.Selectors)
	if err != nil {
		return err
	}

	query := squirrel.Insert("policy_portals").
		Columns(portalColumns...).
		Values(p.ID, p.Region, p.Name, p.SearchURL, p.ParentRegion, selectors,
			p.Enabled, p.CreatedAt, p.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByRegion resolves a portal by region name regardless of its enabled
// flag; returns (nil, nil) when the region has no registered portal.
// Callers that crawl must check Enabled themselves.
func (r *PortalRepository) GetByRegion(ctx context.Context, region string) (*models.PolicyPortal, error) {
	query := squirrel.Select(portalColumns...).
		From("policy_portals").
		Where(squirrel.Eq{"region": region}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	p, err := r.scanOne(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PortalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PolicyPortal, error) {
	query := squirrel.Select(portalColumns...).
		From("policy_portals").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanOne(r.db.QueryRow(ctx, sql, args...))
}

func (r *PortalRepository) List(ctx context.Context) ([]*models.PolicyPortal, error) {
	query := squirrel.Select(portalColumns...).
		From("policy_portals").
		OrderBy("region ASC").
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

	var out []*models.PolicyPortal
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PortalRepository) Update(ctx context.Context, p *models.PolicyPortal) error {
	selectors, err := json.Marshal(p.Selectors)
	if err != nil {
		return err
	}

	query := squirrel.Update("policy_portals").
		Set("region", p.Region).
		Set("name", p.Name).
		Set("search_url", p.SearchURL).
		Set("parent_region", p.ParentRegion).
		Set("selectors", selectors).
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

func (r *PortalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("policy_portals").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PortalRepository) scanOne(row pgx.Row) (*models.PolicyPortal, error) {
	var (
		p         models.PolicyPortal
		selectors []byte
	)
	if err := row.Scan(
		&p.ID, &p.Region, &p.Name, &p.SearchURL, &p.ParentRegion, &selectors,
		&p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(selectors) > 0 {
		if err := json.Unmarshal(selectors, &p.Selectors); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
