// Command api serves the ticketing HTTP API.
//
// @title        Ticketing API
// @version      1.0
// @description  Ticketed-event purchases, event administration and user signup.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/ticketing-system/internal/api"
	"github.com/99minutos/ticketing-system/internal/api/handler"
	"github.com/99minutos/ticketing-system/internal/core/ports"
	"github.com/99minutos/ticketing-system/internal/core/service"
	"github.com/99minutos/ticketing-system/internal/infrastructure/config"
	"github.com/99minutos/ticketing-system/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/ticketing-system/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/ticketing-system/internal/infrastructure/db/redis"
	"github.com/99minutos/ticketing-system/internal/infrastructure/queue"
	"github.com/99minutos/ticketing-system/pkg/logger"
)

// stores groups the persistence ports selected by STORE_DRIVER.
type stores struct {
	events   ports.EventRepository
	users    ports.UserRepository
	purchase ports.PurchaseStore
	ready    map[string]handler.Pinger
	close    func(context.Context) error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ticketing-api",
	})

	// ── 1. Persistence ───────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	// ── 2. Notification queue ────────────────────────────────────────────
	var publisher *queue.StreamPublisher
	if cfg.Purchase.NotifyStream != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		st.ready["redis"] = redisdb.Pinger{Client: rdb}
		publisher = queue.NewStreamPublisher(rdb, cfg.Purchase.NotifyStream, log)
		log.Info().Str("stream", cfg.Purchase.NotifyStream).Msg("purchase notifications enabled")
	} else {
		publisher = queue.NewStreamPublisher(nil, "", log)
		log.Warn().Msg("NOTIFY_STREAM not set, purchase notifications are disabled")
	}

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	dispatcher := queue.NewDispatcher(cfg.Purchase.DispatchWorkers, publisher, log)
	dispatcher.Start(dispatchCtx)

	// ── 3. Services and router ───────────────────────────────────────────
	purchases := service.NewPurchaseService(st.events, st.users, st.purchase, dispatcher,
		service.PurchaseOptions{DetailedConflicts: cfg.Purchase.DetailedConflicts}, log)

	e := api.NewRouter(api.Dependencies{
		Purchases: purchases,
		Events:    service.NewEventService(st.events, st.users, log),
		Users:     service.NewUserService(st.users, log),
		Ready:     st.ready,
		Log:       log,
	})

	// ── 4. Serve with graceful shutdown ──────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notifications were not published")
	}
	log.Info().Msg("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		mem := memory.New()
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			events:   mem,
			users:    mem.Users(),
			purchase: mem,
			ready:    map[string]handler.Pinger{"store": mem},
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "ticketing-api",
	})
	if err != nil {
		return nil, err
	}

	events := mongodb.NewEventRepository(db, cfg.Mongo.EventsTable)
	purchase := mongodb.NewPurchaseStore(client, db, mongodb.Collections{
		Events:        cfg.Mongo.EventsTable,
		Users:         cfg.Mongo.UsersTable,
		Registrations: cfg.Mongo.RegistrationsTable,
	})
	if err := events.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure event indexes")
	}
	if err := purchase.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure registration indexes")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &stores{
		events:   events,
		users:    mongodb.NewUserRepository(db, cfg.Mongo.UsersTable),
		purchase: purchase,
		ready:    map[string]handler.Pinger{"mongodb": mongodb.Pinger{Client: client}},
		close:    client.Disconnect,
	}, nil
}
