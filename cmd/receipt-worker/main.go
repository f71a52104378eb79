// Command receipt-worker consumes purchase notifications from the Redis
// stream and emails a receipt for each one.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/99minutos/ticketing-system/internal/api/metrics"
	"github.com/99minutos/ticketing-system/internal/core/ports"
	"github.com/99minutos/ticketing-system/internal/core/service"
	"github.com/99minutos/ticketing-system/internal/infrastructure/config"
	redisdb "github.com/99minutos/ticketing-system/internal/infrastructure/db/redis"
	"github.com/99minutos/ticketing-system/internal/infrastructure/mail"
	"github.com/99minutos/ticketing-system/internal/infrastructure/queue"
	"github.com/99minutos/ticketing-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "receipt-worker",
	})
	if cfg.Purchase.NotifyStream == "" {
		log.Fatal().Msg("NOTIFY_STREAM is required")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	var mailer ports.Mailer
	if cfg.Mail.Host != "" {
		m, err := mail.NewSMTPMailer(mail.Config{
			Sender:   cfg.Mail.Sender,
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid mail configuration")
		}
		mailer = m
	} else {
		log.Warn().Msg("SMTP_HOST not set, receipts are logged instead of sent")
		mailer = mail.NewLogMailer(log)
	}

	receipts := service.NewReceiptService(mailer, redisdb.NewDedupChecker(rdb), log,
		service.WithOutcomeObserver(func(o service.ReceiptOutcome) {
			metrics.ReceiptsTotal.WithLabelValues(string(o)).Inc()
		}))

	consumer := queue.NewStreamConsumer(rdb, queue.ConsumerConfig{
		Stream:        cfg.Purchase.NotifyStream,
		Group:         cfg.Receipt.Group,
		Consumer:      cfg.Receipt.Consumer,
		BatchSize:     cfg.Receipt.BatchSize,
		Block:         cfg.Receipt.Block,
		MinIdle:       cfg.Receipt.MinIdle,
		MaxDeliveries: cfg.Receipt.MaxDeliveries,
	}, receipts, log)

	// Metrics only; the worker has no other HTTP surface.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	if err := consumer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("receipt consumer stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("receipt worker stopped")
}
