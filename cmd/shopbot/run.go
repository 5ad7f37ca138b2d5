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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"github.com/aretw0/shopbot"
	"github.com/aretw0/shopbot/internal/adapters/file"
	"github.com/aretw0/shopbot/internal/config"
	"github.com/aretw0/shopbot/internal/logging"
	httpAdapter "github.com/aretw0/shopbot/pkg/adapters/http"
	"github.com/aretw0/shopbot/pkg/adapters/moltin"
	"github.com/aretw0/shopbot/pkg/adapters/redis"
	"github.com/aretw0/shopbot/pkg/adapters/telegram"
	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/aretw0/shopbot/pkg/persistence/middleware"
	"github.com/aretw0/shopbot/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Long:  `Connects to Redis, the commerce backend and Telegram, then long-polls for updates until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// The Telegram error callback needs the logger, which needs the bot for alerts.
	var logger *slog.Logger

	tg, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.PollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("telegram handler failed", "err", err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}

	handler := logging.NewHandler(os.Stderr, level, cfg.Log.Format)
	if cfg.Telegram.AlertChatID != 0 {
		alertLevel, err := logging.ParseLevel(cfg.Telegram.AlertLevel)
		if err != nil {
			return err
		}
		handler = logging.NewAlertHandler(handler, telegram.NewNotifier(tg, cfg.Telegram.AlertChatID), alertLevel)
	}
	logger = slog.New(handler)
	if cfg.Commerce.StoreID != "" {
		logger = logger.With("store_id", cfg.Commerce.StoreID)
	}

	// Persistence
	redisOpts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
	if cfg.Redis.TTL > 0 {
		redisOpts = append(redisOpts, redis.WithTTL(cfg.Redis.TTL))
	}
	store := redis.New(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, redisOpts...)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close redis", "err", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("redis at %s: %w", cfg.Redis.Addr(), err)
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if cfg.Redis.Lock {
		sessionOpts = append(sessionOpts,
			session.WithLocker(redis.NewLocker(store.Client(), "shopbot:lock:")),
			session.WithLockTTL(cfg.Redis.LockTTL),
		)
	}

	// Observability
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpAdapter.NewMetrics(reg)
	storeMetrics := middleware.NewStoreMetrics(reg)

	// Commerce backend
	client, tokens := newCommerce(cfg, logger)

	bot, err := shopbot.New(
		middleware.Chain(store, middleware.NewLoggingMiddleware(logger), storeMetrics.Middleware()),
		client,
		tokens,
		telegram.NewMessenger(tg, telegram.WithMessengerLogger(logger)),
		shopbot.WithLogger(logger),
		shopbot.WithLifecycleHooks(domain.MergeHooks(metrics.Hooks(), logHooks(logger))),
		shopbot.WithSessionManager(session.NewManager(sessionOpts...)),
		shopbot.WithStrictUnknownUsers(cfg.Bot.StrictUnknownUsers),
		shopbot.WithMaxInputSize(cfg.Bot.MaxInputSize),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegram.NewListener(ctx, bot, tg, logger).Register(tg)

	// Channel to listen for errors coming from the ops listener.
	serverErrors := make(chan error, 1)
	var srv *http.Server
	if cfg.Ops.Addr != "" {
		srv = httpAdapter.NewServer(cfg.Ops.Addr, httpAdapter.NewHandler(reg,
			httpAdapter.HealthCheck{Name: "redis", Check: store.Ping},
		))
		go func() {
			logger.Info("ops server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()
	}

	polling := make(chan struct{})
	go func() {
		defer close(polling)
		tg.Start()
	}()
	logger.Info("bot is running", "version", shopbot.Version, "user", tg.Me.Username)

	var runErr error
	select {
	case err := <-serverErrors:
		runErr = fmt.Errorf("ops server: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	tg.Stop()
	<-polling

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			_ = srv.Close()
		}
	}
	return runErr
}

// logHooks reports failed events at error level so they reach the alert chat.
func logHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			logger.Error("event failed",
				"event_id", e.EventID,
				"user_id", e.UserID,
				"state", e.State.Label(),
				"trigger", e.Trigger,
				"kind", domain.ErrorKind(e.Err),
				"err", e.Err,
			)
		},
		OnDeliveryFailure: func(ctx context.Context, e *domain.DeliveryEvent) {
			logger.Warn("delivery failed",
				"event_id", e.EventID,
				"user_id", e.UserID,
				"action", e.Action,
				"err", e.Err,
			)
		},
	}
}

// newCommerce builds the backend client and its token provider from configuration.
func newCommerce(cfg *config.Config, logger *slog.Logger) (*moltin.Client, *moltin.TokenProvider) {
	opts := []moltin.Option{
		moltin.WithBaseURL(cfg.Commerce.BaseURL),
		moltin.WithTimeout(cfg.Commerce.Timeout),
		moltin.WithImageCache(file.New(cfg.Images.Dir)),
		moltin.WithLogger(logger),
	}
	if cfg.Commerce.CustomerPassword != "" {
		opts = append(opts, moltin.WithCustomerPassword(cfg.Commerce.CustomerPassword))
	}
	if cfg.Commerce.RateLimit > 0 {
		opts = append(opts, moltin.WithRateLimit(rate.Limit(cfg.Commerce.RateLimit), cfg.Commerce.RateBurst))
	}
	tokens := moltin.NewTokenProvider(cfg.Commerce.ClientID, cfg.Commerce.ClientSecret,
		moltin.WithTokenURL(cfg.Commerce.BaseURL),
		moltin.WithWindow(cfg.Commerce.TokenWindow),
		moltin.WithTokenLogger(logger),
	)
	return moltin.NewClient(opts...), tokens
}
