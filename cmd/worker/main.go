package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"policyhub/db"
	"policyhub/internal/llm"
	"policyhub/internal/queue"
	"policyhub/internal/repository"
	"policyhub/internal/service"
	"policyhub/internal/vectorstore"
	"policyhub/pkg/config"
	"policyhub/pkg/logger"
	"policyhub/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ingestMaxRetries = 3
	ingestRetryDelay = 30 * time.Second
)

// The worker consumes ingestion jobs: it reads uploaded files, chunks
// them, embeds the chunks and writes them to the vector store.
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
	appLogger.Info("Starting PolicyHub ingest worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(postgres.ConnURL(&cfg.Database), appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	docRepo := repository.NewDocumentRepository(pool, appLogger)
	chunkRepo := repository.NewChunkRepository(pool, appLogger)
	kbRepo := repository.NewKnowledgeBaseRepository(pool, appLogger)
	providerRepo := repository.NewProviderRepository(pool, appLogger)
	permRepo := repository.NewPermissionRepository(pool, appLogger)
	assistantRepo := repository.NewAssistantRepository(pool, appLogger)

	vsCfg, err := vectorstore.LoadConfig(cfg.VectorStore.ConfigPath)
	if err != nil {
		appLogger.Fatal("Failed to load vector store config", zap.Error(err))
	}
	store, err := vectorstore.New(vsCfg, chunkRepo)
	if err != nil {
		appLogger.Fatal("Failed to init vector store", zap.Error(err))
	}

	registry := llm.NewDefaultRegistry()
	permService := service.NewPermissionService(permRepo, assistantRepo, kbRepo, appLogger)

	// The worker never publishes, it only consumes.
	docService := service.NewDocumentService(docRepo, chunkRepo, kbRepo, providerRepo, registry, store, nil, permService, cfg.Server.UploadDir, cfg.Ingest.BatchSize, appLogger)

	consumer, err := queue.NewConsumer(cfg.Rabbit.URL, cfg.Rabbit.Queue, ingestMaxRetries, ingestRetryDelay, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
	}
	defer consumer.Close()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down")
		cancel()
	}()

	err = consumer.Run(ctx, func(ctx context.Context, job queue.IngestJob) error {
		docID, err := uuid.Parse(job.DocumentID)
		if err != nil {
			appLogger.Warn("Malformed ingest job", zap.String("document_id", job.DocumentID))
			return nil
		}
		return docService.Ingest(ctx, docID)
	})
	if err != nil && ctx.Err() == nil {
		appLogger.Fatal("Consumer stopped", zap.Error(err))
	}
}
