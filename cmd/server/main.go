// Command server starts the AI interview evaluator HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/nlpcloud"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/stub"
	httpserver "github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/kvcache"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/app"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/dialogue"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evaluator"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/followup"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/questionbank"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/retryx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Session store: PostgreSQL in prod, with an in-process fallback for
	// development so the server runs without infrastructure.
	var sessions domain.SessionRepository
	var dbCheck func(context.Context) error
	if pool, perr := postgres.NewPool(ctx, cfg.DBURL); perr == nil {
		if serr := postgres.EnsureSchema(ctx, pool); serr != nil {
			slog.Error("schema bootstrap failed", slog.Any("error", serr))
			os.Exit(1)
		}
		sessions = postgres.NewSessionRepo(pool)
		dbCheck = pool.Ping
		defer pool.Close()
	} else if cfg.IsProd() {
		slog.Error("db connect failed", slog.Any("error", perr))
		os.Exit(1)
	} else {
		slog.Warn("db unavailable; using in-memory session store", slog.Any("error", perr))
		sessions = memory.NewSessionRepo()
	}

	// Dialogue history store.
	var history domain.KVStore
	var redisCheck func(context.Context) error
	if cfg.RedisAddr != "" {
		store, rerr := kvcache.NewRedisStore(ctx, cfg.RedisAddr)
		if rerr != nil {
			slog.Error("redis connect failed", slog.Any("error", rerr))
			os.Exit(1)
		}
		history = store
		redisCheck = func(ctx context.Context) error {
			return store.Set(ctx, "readyz:ping", "ok", time.Minute)
		}
		defer func() { _ = store.Close() }()
	} else {
		history = kvcache.NewMemoryStore()
	}

	// Training record sink, best-effort when brokers are configured.
	var training domain.TrainingSink
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaBrokers[0] != "" {
		producer, qerr := redpanda.NewProducer(cfg.KafkaBrokers, cfg.TrainingTopic)
		if qerr != nil {
			slog.Error("redpanda producer connect failed", slog.Any("error", qerr))
			os.Exit(1)
		}
		training = producer
		defer producer.Close()
	}

	bank, err := questionbank.New(cfg.QuestionBankPath)
	if err != nil {
		slog.Error("question bank load failed", slog.Any("error", err))
		os.Exit(1)
	}

	providers := buildProviders(cfg)
	slog.Info("providers configured", slog.Int("count", len(providers)))

	eval := evaluator.New(providers, cfg.ProviderTimeout)
	followups := followup.New(providers)
	dlg := dialogue.New(bank, providers, followups, cfg.DialogueTokenBudget)

	sessionSvc := usecase.NewSessionService(sessions, bank, eval, followups, dlg, history, training, cfg.DialogueHistoryTTL)

	srv := httpserver.NewServer(cfg, sessionSvc, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

// buildProviders assembles the ordered provider list from configured keys.
// Outside prod, a deterministic stub keeps the full flow exercisable with
// zero credentials.
func buildProviders(cfg config.Config) []domain.Provider {
	attempts, minDelay, maxDelay := cfg.GetRetryConfig()
	retry := retryx.Policy{Attempts: attempts, MinDelay: minDelay, MaxDelay: maxDelay}

	var providers []domain.Provider
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, openai.New(cfg, retry))
	}
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, gemini.New(cfg, retry))
	}
	if cfg.NLPCloudAPIKey != "" {
		providers = append(providers, nlpcloud.New(cfg, retry))
	}
	if len(providers) == 0 && !cfg.IsProd() {
		providers = append(providers, stub.New())
	}
	return providers
}
