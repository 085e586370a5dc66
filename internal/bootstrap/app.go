package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"grantreview-backend/internal/enrich"
	"grantreview-backend/internal/llm"
	"grantreview-backend/internal/llm/gemini"
	openai "grantreview-backend/internal/llm/openai"
	"grantreview-backend/internal/notify"
	"grantreview-backend/internal/reviews"
	"grantreview-backend/internal/shared/config"
	"grantreview-backend/internal/shared/storage/db"
)

const (
	adapterTimeout = 30 * time.Second
	notifyTimeout  = 15 * time.Second
)

// App holds shared dependencies. Router wiring belongs to the server
// package; Build prepares everything the routes need.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	ReviewsRepo   reviews.Repo
	LLMClient     llm.Client
	ReviewService *reviews.Service
	ReviewHandler *reviews.Handler
}

// Build prepares shared dependencies without wiring routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo reviews.Repo
	if sqlDB != nil {
		repo = &reviews.PGRepo{DB: sqlDB}
	} else {
		repo = reviews.NewMemoryRepo()
	}

	client, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := &reviews.Service{
		Repo:     repo,
		LLM:      client,
		GitHub:   enrich.NewGitHubAdapter(cfg.GitHubAPIURL, cfg.GitHubToken, adapterTimeout),
		Research: enrich.NewResearchAdapter(cfg.ResearchAPIURL, cfg.ResearchAPIKey, cfg.ResearchModel, adapterTimeout),
	}

	var replyFunc notify.Func
	if cfg.NotifyURL != "" {
		replyFunc = notify.NewWebhook(cfg.NotifyURL, notifyTimeout).Func()
	}

	return &App{
		Config:        cfg,
		DB:            sqlDB,
		ReviewsRepo:   repo,
		LLMClient:     client,
		ReviewService: svc,
		ReviewHandler: &reviews.Handler{Svc: svc, Notify: replyFunc},
	}, nil
}

// buildDB connects and migrates. Outside production a connection failure
// falls back to the in-memory ledger instead of aborting startup.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil, nil
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		_ = sqlDB.Close()
		return nil, nil
	}
	return sqlDB, nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Printf("OPENAI_API_KEY is not set, using placeholder LLM client")
			return llm.PlaceholderClient{}, nil
		}
		model := cfg.LLMModel
		if model == "" {
			model = "gpt-4o-mini"
		}
		return openai.NewClient(cfg.OpenAIAPIKey, model)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Printf("GEMINI_API_KEY is not set, using placeholder LLM client")
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	case "placeholder":
		return llm.PlaceholderClient{}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
