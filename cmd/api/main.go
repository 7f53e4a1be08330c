package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/internal/config"
	"github.com/portfolio-chat/backend/internal/handler"
	"github.com/portfolio-chat/backend/internal/logging"
	"github.com/portfolio-chat/backend/internal/middleware"
	"github.com/portfolio-chat/backend/internal/model/knowledge"
	"github.com/portfolio-chat/backend/internal/model/profile"
	"github.com/portfolio-chat/backend/internal/service/ai"
	"github.com/portfolio-chat/backend/internal/service/chat"
	"github.com/portfolio-chat/backend/internal/service/responder"
	"github.com/portfolio-chat/backend/internal/service/userstory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using system environment variables only", zap.Error(envErr))
	}

	entries := knowledge.Seed()
	if cfg.Knowledge.File != "" {
		entries, err = knowledge.LoadFile(cfg.Knowledge.File)
		if err != nil {
			logger.Fatal("failed to load knowledge base", zap.String("file", cfg.Knowledge.File), zap.Error(err))
		}
	}
	kb := knowledge.NewBase(entries)
	owner := profile.Seed()

	completer := ai.New(ctx, cfg.AI, logger)
	defer closeIfCloser(logger, completer)

	storyCompleter := newStoryCompleter(ctx, cfg.AI, completer, logger)
	if storyCompleter != completer {
		defer closeIfCloser(logger, storyCompleter)
	}

	chatService := chat.NewService(
		chat.NewMemoryStore(),
		responder.New(kb, owner, completer, cfg.AI.Timeout, logger),
		logger,
	)
	storyService := userstory.NewService(storyCompleter, logger)

	counter := newRateLimitCounter(ctx, cfg.RateLimit, logger)
	defer closeIfCloser(logger, counter)

	router := handler.NewRouter(handler.Dependencies{
		Owner:          owner,
		Knowledge:      kb,
		Chat:           chatService,
		UserStories:    storyService,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, counter, logger),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
		Logger:         logger,
	})

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Int("knowledge_entries", kb.Len()),
		zap.Strings("allowed_origins", cfg.CORS.AllowedOrigins),
		zap.Int("rate_limit_max_requests", cfg.RateLimit.MaxRequests),
		zap.Bool("trust_proxy", cfg.Server.TrustProxy),
		zap.Duration("rate_limit_window", cfg.RateLimit.Window))
	if completer.Available() {
		logger.Info("language model integration enabled", zap.String("provider", completer.Name()))
	} else {
		logger.Info("language model integration disabled (set OPENAI_API_KEY, GEMINI_API_KEY or ARK_* to enable)")
	}
	if storyService.Available() {
		logger.Info("user story generation enabled", zap.String("provider", storyService.Provider()))
	}

	startServer(ctx, cfg.Server, router, logger)
}

// newRateLimitCounter 配置了 REDIS_URL 时使用 Redis 计数，返回 nil 表示使用内存计数。
func newRateLimitCounter(ctx context.Context, cfg config.RateLimitConfig, logger *zap.Logger) httprate.LimitCounter {
	if cfg.RedisURL == "" {
		return nil
	}

	counter, err := middleware.NewRedisCounter(ctx, cfg.RedisURL, logger)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory rate limit counter", zap.Error(err))
		return nil
	}
	logger.Info("rate limit counter backed by redis")
	return counter
}

// newStoryCompleter 优先使用 Gemini 生成用户故事，否则复用对话模型。
func newStoryCompleter(ctx context.Context, cfg config.AIConfig, chatCompleter ai.Completer, logger *zap.Logger) ai.Completer {
	if !cfg.Gemini.Enabled() || chatCompleter.Name() == config.ProviderGemini {
		return chatCompleter
	}

	gemini, err := ai.NewGemini(ctx, cfg.Gemini, logger)
	if err != nil {
		logger.Warn("gemini unavailable for user stories, using chat provider", zap.Error(err))
		return chatCompleter
	}
	return gemini
}

func closeIfCloser(logger *zap.Logger, v any) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close client", zap.Error(err))
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	logger.Info("chat API listening",
		zap.String("addr", addr),
		zap.String("health", "/api/health"),
		zap.String("chat", "/api/chat"))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
