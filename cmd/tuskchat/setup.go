package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/llm"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/command"
	"github.com/sandevgo/tuskchat/internal/service/knowledge"
	"github.com/sandevgo/tuskchat/internal/service/retrieval"
	"github.com/sandevgo/tuskchat/internal/service/session"
	"github.com/sandevgo/tuskchat/internal/storage/sqlite"
	"github.com/sandevgo/tuskchat/internal/transport/api"
	"github.com/sandevgo/tuskchat/internal/transport/telegram"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
)

const defaultSystemPrompt = "You are a helpful assistant. Answer concisely and only from the provided context when it is present."

// deps is the wired object graph shared by all subcommands.
type deps struct {
	appCfg     *config.AppConfig
	sessionCfg *config.SessionConfig
	ragCfg     *config.RAGConfig

	db        *sql.DB
	chunks    *sqlite.ChunksRepo
	analytics *sqlite.AnalyticsRepo
	recorder  *sqlite.Recorder

	model     *llm.Breaker
	cache     *knowledge.Cache
	indexer   *knowledge.Indexer
	retriever *retrieval.Retriever
	store     *session.Store
	chat      *chat.Service
	router    core.CmdRouter
}

func newDeps(ctx context.Context) (*deps, error) {
	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	// 1. Configuration
	d := &deps{}
	d.appCfg = config.NewAppConfig(ctx)
	d.sessionCfg = config.NewSessionConfig(ctx)
	d.ragCfg = config.NewRAGConfig(ctx, d.appCfg)
	llmCfg := config.NewLLMConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, d.appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	d.db = db
	d.chunks = sqlite.NewChunksRepo(db)
	d.analytics = sqlite.NewAnalyticsRepo(db)
	d.recorder = sqlite.NewRecorder(ctx, db, 0)

	// 3. Model client
	d.model, err = llm.NewProvider(ctx, d.appCfg, llmCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	// 4. Knowledge
	d.cache = knowledge.NewCache(d.chunks)
	d.indexer = knowledge.NewIndexer(d.chunks, d.model, d.cache, knowledge.IndexerConfig{
		Path:          d.ragCfg.KnowledgeBasePath,
		PersonalFiles: d.ragCfg.PersonalFiles,
		Concurrency:   d.ragCfg.IngestConcurrency,
	})
	d.retriever = retrieval.NewRetriever(d.model, d.cache, d.ragCfg.GetEmbeddingDimensions())

	// 5. Sessions and chat
	prompt, err := loadSystemPrompt(ctx, d.appCfg.GetSystemPromptPath())
	if err != nil {
		db.Close()
		return nil, err
	}
	d.store = session.NewStore(d.sessionCfg, prompt, d.recorder)
	d.chat = chat.NewService(d.store, d.retriever, d.model, d.recorder, d.ragCfg)
	d.router = command.New(command.NewCommands(d.chat, d.retriever, d.cache, d.ragCfg))

	return d, nil
}

// loadCache fills the retrieval cache, logging instead of failing on an empty index.
func (d *deps) loadCache(ctx context.Context) {
	logger := log.FromCtx(ctx)
	if err := d.cache.Load(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to load knowledge chunks, retrieval disabled until the next ingest")
		return
	}
	if d.cache.Len() == 0 {
		logger.Warn().Msg("knowledge base is empty, run 'tuskchat ingest'")
	}
}

// backgroundServices returns the services every long-running command needs.
// The database closes last because services shut down in reverse order.
func (d *deps) backgroundServices(ctx context.Context) ([]srv.Service, error) {
	services := []srv.Service{
		srv.NewCleanup(d.db.Close),
		d.recorder,
		session.NewSweeper(d.store, d.sessionCfg.SweepInterval),
	}

	if d.ragCfg.RebuildCron != "" {
		scheduler, err := knowledge.NewRebuildScheduler(d.ragCfg.RebuildCron, d.indexer)
		if err != nil {
			return nil, err
		}
		services = append(services, scheduler)
		log.FromCtx(ctx).Info().Str("cron", d.ragCfg.RebuildCron).Msg("scheduled index rebuild enabled")
	}

	return services, nil
}

func (d *deps) transports(ctx context.Context) ([]srv.Service, error) {
	var services []srv.Service

	if d.appCfg.IsHTTPSelected() {
		httpCfg := config.NewHTTPConfig(ctx)
		services = append(services, api.NewServer(httpCfg, d.chat, d.cache, d.analytics, isDebug()))
	}

	// Telegram Bot
	if d.appCfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, d.chat, d.router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no transport enabled, set ENABLE_HTTP or ENABLE_TELEGRAM")
	}
	return services, nil
}

func loadSystemPrompt(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.FromCtx(ctx).Warn().Str("path", path).Msg("system prompt not found, using the built-in default")
			return defaultSystemPrompt, nil
		}
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
