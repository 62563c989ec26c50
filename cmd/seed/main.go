package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"policyhub/db"
	"policyhub/internal/models"
	"policyhub/internal/repository"
	"policyhub/pkg/auth"
	"policyhub/pkg/config"
	"policyhub/pkg/logger"
	"policyhub/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Seeds an admin account, a default model provider and a few policy
// portals so a fresh install is immediately usable.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(postgres.ConnURL(&cfg.Database), appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool, appLogger)
	providerRepo := repository.NewProviderRepository(pool, appLogger)
	portalRepo := repository.NewPortalRepository(pool, appLogger)

	appLogger.Info("Seeding database")

	if err := seedAdmin(ctx, userRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed admin user", zap.Error(err))
	}
	if err := seedProvider(ctx, providerRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed model provider", zap.Error(err))
	}
	if err := seedPortals(ctx, portalRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed policy portals", zap.Error(err))
	}

	appLogger.Info("Seeding completed")
}

func seedAdmin(ctx context.Context, repo *repository.UserRepository, logger *zap.Logger) error {
	email := getEnv("SEED_ADMIN_EMAIL", "admin@policyhub.local")

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		logger.Info("Admin user already exists", zap.String("email", email))
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(getEnv("SEED_ADMIN_PASSWORD", "changeme123"))
	if err != nil {
		return err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "admin",
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return err
	}

	logger.Info("Admin user created", zap.String("email", email))
	return nil
}

func seedProvider(ctx context.Context, repo *repository.ProviderRepository, logger *zap.Logger) error {
	if _, err := repo.GetDefault(ctx); err == nil {
		logger.Info("Default model provider already exists")
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	now := time.Now()
	provider := &models.ModelProvider{
		ID:             uuid.New(),
		Name:           "local-ollama",
		Kind:           models.ProviderOllama,
		BaseURL:        getEnv("SEED_OLLAMA_URL", "http://localhost:11434"),
		Model:          getEnv("SEED_OLLAMA_MODEL", "llama3:latest"),
		EmbeddingModel: getEnv("SEED_OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		Enabled:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Create(ctx, provider); err != nil {
		return err
	}

	logger.Info("Default model provider created", zap.String("name", provider.Name))
	return nil
}

// portalStore is the slice of the portal repository the seeder needs.
// GetByRegion returns (nil, nil) when the region has no portal.
type portalStore interface {
	GetByRegion(ctx context.Context, region string) (*models.PolicyPortal, error)
	Create(ctx context.Context, p *models.PolicyPortal) error
}

func seedPortals(ctx context.Context, repo portalStore, logger *zap.Logger) error {
	portals := []*models.PolicyPortal{
		{
			Region:    "广东省",
			Name:      "广东省人民政府",
			SearchURL: "https://search.gd.gov.cn/search/all?keywords=%s",
			Selectors: models.PortalSelectors{
				Result:     "div.search-result-item",
				Title:      "h3 a",
				URL:        "h3 a",
				Date:       "span.date",
				Department: "span.source",
			},
			Enabled: true,
		},
		{
			Region:       "深圳市",
			Name:         "深圳市人民政府",
			SearchURL:    "https://www.sz.gov.cn/cn/hdjl/search?q=%s",
			ParentRegion: "广东省",
			Selectors: models.PortalSelectors{
				Result:     "li.result",
				Title:      "a.title",
				URL:        "a.title",
				Date:       "span.time",
				Department: "span.dept",
			},
			Enabled: true,
		},
		{
			Region:       "广州市",
			Name:         "广州市人民政府",
			SearchURL:    "https://www.gz.gov.cn/so/search?tab=all&q=%s",
			ParentRegion: "广东省",
			Selectors: models.PortalSelectors{
				Result:     "div.res-item",
				Title:      "h3 a",
				URL:        "h3 a",
				Date:       "span.pub-date",
				Department: "span.pub-source",
			},
			Enabled: true,
		},
	}

	for _, p := range portals {
		existing, err := repo.GetByRegion(ctx, p.Region)
		if err != nil {
			return err
		}
		if existing != nil {
			logger.Info("Portal already exists", zap.String("region", p.Region))
			continue
		}

		now := time.Now()
		p.ID = uuid.New()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
		logger.Info("Portal created", zap.String("region", p.Region))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
