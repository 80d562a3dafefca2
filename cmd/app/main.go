// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trenbolt-bot/internal/application"
	"trenbolt-bot/internal/config"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/domain/ports/repository"
	aiAdapters "trenbolt-bot/internal/infra/adapters/ai"
	tele "trenbolt-bot/internal/infra/adapters/telegram"
	pg "trenbolt-bot/internal/infra/db/postgres"
	httpapi "trenbolt-bot/internal/infra/http"
	"trenbolt-bot/internal/infra/logging"
	red "trenbolt-bot/internal/infra/redis"
	"trenbolt-bot/internal/infra/sched"
	"trenbolt-bot/internal/infra/state"
	"trenbolt-bot/internal/infra/worker"
	"trenbolt-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop bot when no token)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres (required: no persistence, no service) ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis (optional: state falls back to memory) ----
	var (
		rateLimiter *red.RateLimiter
		stateRepo   repository.AdminStateRepository
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
		stateRepo = red.NewAdminStateRepo(redisClient, cfg.Redis.TTL)
		logger.Info().Msg("redis connected, session state persisted")
	} else {
		stateRepo = state.NewMemoryStateRepo()
		logger.Info().Msg("no redis configured, session state in memory")
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	usageRepo := pg.NewPostgresUsageRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- AI adapters ----
	var analyzer adapter.TextAnalyzer = aiAdapters.NoopAnalyzer{}
	if cfg.AI.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiAnalyzer(ctx, cfg.AI.GeminiKey, cfg.AI.ModelCandidates, cfg.AI.MaxOutputTokens, logger)
		if err != nil {
			logger.Error().Err(err).Msg("gemini init failed, analysis degraded to local summary")
		} else {
			analyzer = g
			logger.Info().Str("model", g.Model()).Bool("enabled", g.Enabled()).Msg("gemini analyzer ready")
		}
	} else {
		logger.Warn().Msg("no gemini key, analysis degraded to local summary")
	}

	var transcriber adapter.Transcriber = aiAdapters.NoopTranscriber{}
	if cfg.AI.OpenAIKey != "" {
		w, err := aiAdapters.NewWhisperTranscriber(cfg.AI.OpenAIKey, logger)
		if err != nil {
			logger.Error().Err(err).Msg("whisper init failed, transcription disabled")
		} else {
			transcriber = w
		}
	} else {
		logger.Warn().Msg("no openai key, transcription disabled")
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, usageRepo, txManager, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, usageRepo, logger)
	analysisUC := usecase.NewAnalysisUseCase(analyzer, userUC, logger)
	transcribeUC := usecase.NewTranscribeUseCase(transcriber, userUC, logger)
	exportUC := usecase.NewExportUseCase(userRepo, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, analysisUC, transcribeUC)

	// ---- Telegram ----
	pool4updates := worker.NewPool(cfg.Bot.Workers, logger)
	pool4updates.Start(ctx)
	defer pool4updates.Stop()

	var (
		botPort adapter.TelegramBotAdapter
		realBot *tele.RealTelegramBotAdapter
	)
	if cfg.Bot.Token == "" {
		// Only reachable in dev mode: outbound calls are logged, not sent.
		botPort = tele.NewNoopBotAdapter(logger)
		logger.Warn().Msg("no bot token, using noop telegram adapter")
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, pool4updates, cfg.Runtime.Dev, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram init failed")
		}
		botPort = realBot
	}

	broadcastUC := usecase.NewBroadcastUseCase(userRepo, botPort, logger)
	dispatcher := tele.NewAdminDispatcher(cfg.Bot.AdminIDs, botPort, stateRepo, userUC, statsUC, broadcastUC, exportUC, logger)

	var feeder httpapi.UpdateFeeder
	if realBot != nil {
		realBot.SetAdminDispatcher(dispatcher)
		feeder = realBot
		go func() {
			if err := realBot.Start(ctx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("telegram update pump stopped")
			}
		}()
	}

	// ---- HTTP server (health, metrics, webhook) ----
	srv := httpapi.NewServer(cfg, feeder, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Stats reporter ----
	reporter := sched.NewStatsReporter(5*time.Minute, statsUC, logger)
	go func() { _ = reporter.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown error")
	}
	if realBot != nil {
		realBot.Stop()
	}
	cancel()
}
