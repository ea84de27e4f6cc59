// Command bot runs the registration gatekeeper: the Telegram polling loop
// plus a small ops HTTP endpoint for health and metrics.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"village-gate/internal/application/metrics"
	"village-gate/internal/application/service"
	"village-gate/internal/application/store"
	"village-gate/internal/bot"
	"village-gate/internal/bot/telegram"
	"village-gate/internal/conversation"
	"village-gate/internal/events"
	"village-gate/internal/platform/config"
	"village-gate/internal/platform/httpserver"
	"village-gate/internal/platform/logger"
	"village-gate/internal/platform/postgres"
	"village-gate/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var states conversation.Store
	if redisClient != nil {
		states = conversation.NewRedis(redisClient.Client)
		log.Info("conversation state in redis")
	} else {
		states = conversation.NewInMemory()
		log.Info("conversation state in memory")
	}

	publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.EventsTopic, log)
	if err != nil {
		return fmt.Errorf("connect event broker: %w", err)
	}
	defer publisher.Close()

	apps := service.New(
		store.NewPostgres(db),
		service.WithMetrics(metrics.New()),
		service.WithEvents(publisher),
		service.WithLogger(log),
	)

	client, err := telegram.New(cfg.BotToken, cfg.PollTimeout, log)
	if err != nil {
		return fmt.Errorf("start telegram client: %w", err)
	}

	registration := bot.NewRegistration(client, states, apps, cfg.AdminIDs, log)
	review := bot.NewReview(client, apps, cfg.IsAdmin, cfg.GroupID, log)
	search := bot.NewSearch(client, states, apps, cfg.IsAdmin, log)
	admin := bot.NewAdmin(client, apps, cfg.IsAdmin, cfg.GroupID, log)
	router := bot.NewRouter(registration, review, search, admin, states, log)

	ops := httpserver.New(cfg.OpsAddr, opsRouter(db, redisClient))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("polling started")
		err := client.Run(ctx, router)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("ops endpoint listening", "addr", cfg.OpsAddr)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ops.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func opsRouter(db *sql.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
