package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raincoat98/bookmarkle-bridge/internal/config"
	api "github.com/raincoat98/bookmarkle-bridge/internal/http"
	"github.com/raincoat98/bookmarkle-bridge/internal/log"
	"github.com/raincoat98/bookmarkle-bridge/internal/metrics"
	"github.com/raincoat98/bookmarkle-bridge/internal/notify"
	"github.com/raincoat98/bookmarkle-bridge/internal/oauth"
	"github.com/raincoat98/bookmarkle-bridge/internal/queue"
	"github.com/raincoat98/bookmarkle-bridge/internal/relay"
	"github.com/raincoat98/bookmarkle-bridge/internal/repo"
	"github.com/raincoat98/bookmarkle-bridge/internal/security"
	"github.com/raincoat98/bookmarkle-bridge/internal/session"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "production")
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("mongo indexes", zap.Error(err))
	}

	cache := repo.NewSessionCache(cfg.RedisAddr)
	defer cache.Close()

	events := queue.Publisher(queue.NewNoop())
	if cfg.AMQPURL != "" {
		events, err = queue.NewRabbit(cfg.AMQPURL, queue.Exchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	}
	defer events.Close()

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions := session.NewManager(
		cache,
		security.TokenVerifier{Secret: cfg.JWTSecret},
		sessionTTL,
		time.Duration(cfg.RestoreTimeoutMS)*time.Millisecond,
		time.Duration(cfg.RestoreBearerTimeoutMS)*time.Millisecond,
		logger,
	)

	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, cfg.StateSecret)
	gate := notify.NewGate(store, events, logger)
	router := relay.NewRouter(store, sessions, gate, google, events, cfg.AllowedOrigin, logger)

	h := api.NewHandler(router, sessions, google, cfg.JWTSecret, sessionTTL, store, cache, events, logger)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("bookmarkle-bridge listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
