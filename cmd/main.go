package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/okian/salesboard/internal/activity"
	"github.com/okian/salesboard/internal/adapters/http/api"
	"github.com/okian/salesboard/internal/adapters/kvstore"
	app "github.com/okian/salesboard/internal/app"
	"github.com/okian/salesboard/internal/config"
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/classify"
	"github.com/okian/salesboard/internal/domain/score"
	"github.com/okian/salesboard/internal/scan"
	"github.com/okian/salesboard/internal/upstream/credentials"
	"github.com/okian/salesboard/internal/upstream/crm"
	"github.com/okian/salesboard/internal/upstream/notify"
	"github.com/okian/salesboard/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cal, err := bizdate.New(cfg.BusinessTimezone)
	if err != nil {
		log.Error(ctx, "invalid business_timezone", logger.String("tz", cfg.BusinessTimezone), logger.Error(err))
		return
	}

	kv := newKVStore(ctx, cfg, log)

	// Upstream CRM plumbing: persisted credentials -> rate-limited
	// fetcher -> typed endpoint client.
	creds := credentials.NewStore(kv, credentials.Static(cfg.CRMAPIToken))
	client := crm.NewClient(crm.NewFetcher(cfg.CRMBaseURL, creds))

	scanner := scan.New(client, kv, cal,
		scan.WithTimeBudget(time.Duration(cfg.ScanBudgetSeconds)*time.Second),
		scan.WithFreshness(time.Duration(cfg.CheckpointTTLMinutes)*time.Minute),
		scan.WithConcurrency(cfg.ScanConcurrency),
	)

	classifier := classify.New(cal,
		classify.WithBonusWeekday(time.Weekday(cfg.BonusWeekday)),
		classify.WithBonusMultiplier(cfg.BonusMultiplier),
	)

	activities := activity.NewService(
		activity.NewFetcher(client,
			activity.WithPageCap(cfg.ActivityPageCap),
			activity.WithTimeCap(time.Duration(cfg.ActivityTimeCapSeconds)*time.Second),
		),
		classifier,
		kv,
		cal,
		activity.WithCacheTTL(time.Duration(cfg.ActivityCacheTTLMinutes)*time.Minute),
	)

	engine := score.New(cal,
		score.WithWeights(cfg.Weights),
		score.WithProfiles(cfg.Profiles),
		score.WithOverrides(memberOverrides(ctx, cfg, log)),
	)

	svc := app.New(cfg.Roster, cal, scanner, activities, engine, kv,
		app.WithBoardTTL(time.Duration(cfg.BoardCacheTTLSeconds)*time.Second),
		app.WithNotifier(notify.NewWebhook(cfg.WebhookURL, log)),
		app.WithLogger(log),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newKVStore connects to Redis when configured, otherwise falls back to
// the in-process store. Scan checkpoints and cached aggregates then die
// with the process, which is fine for local runs.
func newKVStore(ctx context.Context, cfg *config.Config, log logger.Logger) kvstore.Store {
	if cfg.RedisAddr == "" {
		log.Warn(ctx, "redis_addr not set; state will not survive restarts")
		return kvstore.NewMemoryStore()
	}

	store := kvstore.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Warn(ctx, "redis unreachable; falling back to in-process store", logger.Error(err))
		return kvstore.NewMemoryStore()
	}

	log.Info(ctx, "connected to redis", logger.String("addr", cfg.RedisAddr))
	return store
}

// memberOverrides converts config overrides, keyed by member id strings,
// into the numeric keys the score engine expects.
func memberOverrides(ctx context.Context, cfg *config.Config, log logger.Logger) map[int]map[string]int {
	if len(cfg.TargetOverrides) == 0 {
		return nil
	}

	out := make(map[int]map[string]int, len(cfg.TargetOverrides))
	for key, targets := range cfg.TargetOverrides {
		id, err := strconv.Atoi(key)
		if err != nil {
			log.Warn(ctx, "skipping override with non-numeric member id", logger.String("member_id", key))
			continue
		}
		out[id] = targets
	}
	return out
}
