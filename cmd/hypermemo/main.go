package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/hypermemo/hypermemo/internal/ai"
	"github.com/hypermemo/hypermemo/internal/config"
	"github.com/hypermemo/hypermemo/internal/handler"
	"github.com/hypermemo/hypermemo/internal/job"
	"github.com/hypermemo/hypermemo/internal/middleware"
	"github.com/hypermemo/hypermemo/internal/repo"
	"github.com/hypermemo/hypermemo/internal/schedule"
	"github.com/hypermemo/hypermemo/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "hypermemo",
		Short: "hypermemo backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run hypermemo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			_ = godotenv.Load()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DB)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("auth_disabled", cfg.Auth.Disable),
	)
	if cfg.AI.Provider == "openai" && cfg.AI.OpenAI.APIKey == "" {
		logutil.GetLogger(context.Background()).Warn("openai api key is not configured, ai endpoints will fail")
	}

	var providerArgs interface{}
	switch cfg.AI.Provider {
	case "vertex":
		providerArgs = cfg.AI.Vertex
	default:
		providerArgs = cfg.AI.OpenAI
	}
	aiProvider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	aiManager := ai.NewManager(aiProvider, ai.ManagerConfig{
		GenerateModel: cfg.AI.GenerateModel,
		EmbedModel:    cfg.AI.EmbedModel,
		Timeout:       cfg.AI.Timeout,
	})

	bookmarkRepo := repo.NewBookmarkRepo(db)
	enricher := service.NewEnricher(aiManager)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, enricher)
	ragService := service.NewRagService(bookmarkRepo, aiManager)

	deps := handler.RouterDeps{
		Bookmarks: handler.NewBookmarkHandler(bookmarkService),
		AI:        handler.NewAIHandler(aiManager),
		Ask:       handler.NewAskHandler(ragService),
		Auth: middleware.AuthConfig{
			Secret:     []byte(cfg.Auth.JWTSecret),
			Required:   !cfg.Auth.Disable,
			AnonUserID: cfg.Auth.AnonUserID,
		},
		AskWindow: time.Duration(cfg.AskRateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.EmbeddingBackfillCron != "" {
		backfill := service.NewEmbeddingBackfill(bookmarkRepo, aiManager, cfg.Jobs.EmbeddingBackfillBatch)
		if err := scheduler.AddJob(job.NewEmbeddingBackfillJob(backfill), cfg.Jobs.EmbeddingBackfillCron); err != nil {
			return fmt.Errorf("register backfill job: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
