package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"policyhub/db"
	"policyhub/internal/api"
	"policyhub/internal/api/handlers"
	"policyhub/internal/llm"
	"policyhub/internal/policysearch"
	"policyhub/internal/queue"
	"policyhub/internal/repository"
	"policyhub/internal/service"
	"policyhub/internal/vectorstore"
	"policyhub/pkg/auth"
	"policyhub/pkg/config"
	"policyhub/pkg/logger"
	"policyhub/pkg/postgres"
	"policyhub/pkg/redis"

	"go.uber.org/zap"
)

const ingestRetryDelay = 30 * time.Second

// @title PolicyHub API
// @version 1.0
// @description AI assistant platform with knowledge bases and tiered policy search

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting PolicyHub server")

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(postgres.ConnURL(&cfg.Database), appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	cache, err := redis.NewStore(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	publisher, err := queue.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue, ingestRetryDelay)
	if err != nil {
		appLogger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool, appLogger)
	assistantRepo := repository.NewAssistantRepository(pool, appLogger)
	kbRepo := repository.NewKnowledgeBaseRepository(pool, appLogger)
	docRepo := repository.NewDocumentRepository(pool, appLogger)
	chunkRepo := repository.NewChunkRepository(pool, appLogger)
	convRepo := repository.NewConversationRepository(pool, appLogger)
	questionRepo := repository.NewQuestionRepository(pool, appLogger)
	providerRepo := repository.NewProviderRepository(pool, appLogger)
	mcpRepo := repository.NewMCPRepository(pool, appLogger)
	permRepo := repository.NewPermissionRepository(pool, appLogger)
	portalRepo := repository.NewPortalRepository(pool, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	vsCfg, err := vectorstore.LoadConfig(cfg.VectorStore.ConfigPath)
	if err != nil {
		appLogger.Fatal("Failed to load vector store config", zap.Error(err))
	}
	store, err := vectorstore.New(vsCfg, chunkRepo)
	if err != nil {
		appLogger.Fatal("Failed to init vector store", zap.Error(err))
	}

	registry := llm.NewDefaultRegistry()

	// Services
	permService := service.NewPermissionService(permRepo, assistantRepo, kbRepo, appLogger)
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	userService := service.NewUserService(userRepo, appLogger)
	assistantService := service.NewAssistantService(assistantRepo, kbRepo, permService, appLogger)
	kbService := service.NewKnowledgeBaseService(kbRepo, permService, &cfg.Ingest, appLogger)
	retrievalService := service.NewRetrievalService(store, chunkRepo, providerRepo, registry, appLogger)
	chatService := service.NewChatService(convRepo, questionRepo, assistantRepo, providerRepo, retrievalService, registry, &cfg.Chat, appLogger)
	docService := service.NewDocumentService(docRepo, chunkRepo, kbRepo, providerRepo, registry, store, publisher, permService, cfg.Server.UploadDir, cfg.Ingest.BatchSize, appLogger)
	questionService := service.NewQuestionService(questionRepo, permService, appLogger)
	providerService := service.NewProviderService(providerRepo, appLogger)
	mcpService := service.NewMCPRegistryService(mcpRepo, appLogger)

	engine := policysearch.NewEngine(portalRepo, cache, &cfg.Search, appLogger)
	searchService := service.NewSearchService(engine, portalRepo, appLogger)

	// Handlers
	h := &api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, appLogger),
		Assistant: handlers.NewAssistantHandler(assistantService, appLogger),
		Knowledge: handlers.NewKnowledgeHandler(kbService, docService, retrievalService, permService, appLogger),
		Chat:      handlers.NewChatHandler(chatService, appLogger),
		Search:    handlers.NewSearchHandler(searchService, appLogger),
		Question:  handlers.NewQuestionHandler(questionService, appLogger),
		Admin: handlers.NewAdminHandler(
			userService, providerService, mcpService, searchService, permService,
			cfg, vsCfg.Backend, pool, cache, appLogger,
		),
	}

	app := api.SetupRouter(h, jwtManager, cfg.Server.UploadDir, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Shutdown failed", zap.Error(err))
	}
}
