// services/notification-service/cmd/main.go

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Tanmoy095/InvestHub/services/notification-service/internal/config"
	"github.com/Tanmoy095/InvestHub/services/notification-service/internal/dispatch"
	"github.com/Tanmoy095/InvestHub/services/notification-service/internal/health"
	"github.com/Tanmoy095/InvestHub/services/notification-service/internal/mailer"
	"github.com/Tanmoy095/InvestHub/services/notification-service/internal/worker"
	pkgkafka "github.com/Tanmoy095/InvestHub/shared/kafka"
	"github.com/Tanmoy095/InvestHub/shared/logging"
	pkgrabbit "github.com/Tanmoy095/InvestHub/shared/rabbitmq"
	"github.com/joho/godotenv"
)

const serviceName = "notification-service"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(serviceName, cfg.Common.LOG_LEVEL)
	slog.SetDefault(logger)

	// Connect to RabbitMQ (the work queue).
	logger.Info("connecting to rabbitmq", slog.String("host", cfg.Common.RABBITMQ_HOST))
	rabbitClient, err := pkgrabbit.NewClient(cfg.Common.GetRabbitMQURL())
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	// Not deferred: the shutdown sequence below closes it after the workers stop.
	if err := rabbitClient.CreateQueue(cfg.EmailQueue); err != nil {
		logger.Error("failed to declare email queue", slog.Any("error", err))
		os.Exit(1)
	}
	if err := rabbitClient.SetPrefetch(10); err != nil {
		logger.Error("failed to set prefetch", slog.Any("error", err))
		os.Exit(1)
	}
	deliveries, err := rabbitClient.Consume(cfg.EmailQueue, serviceName)
	if err != nil {
		logger.Error("failed to consume email queue", slog.Any("error", err))
		os.Exit(1)
	}

	// Connect to Kafka (the news ticker of access request facts).
	logger.Info("connecting to kafka",
		slog.Any("brokers", cfg.Common.KAFKA_BROKERS), slog.String("topic", cfg.Common.KAFKA_TOPIC))
	kafkaConsumer := pkgkafka.NewConsumer(cfg.Common.KAFKA_BROKERS, cfg.Common.KAFKA_TOPIC, cfg.ConsumerGroup, logger)

	var m mailer.Mailer
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP_HOST not set; emails are logged instead of sent")
		m = mailer.NewLogMailer(logger)
	}
	bridge := dispatch.NewBridge(rabbitClient, cfg.EmailQueue, cfg.InviteBaseURL, cfg.AdminEmail, logger)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Worker 1: the email sender.
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.NewEmailWorker(m, logger).Run(ctx, deliveries)
	}()

	// Worker 2: the bridge (Kafka fact -> RabbitMQ task).
	wg.Add(1)
	go func() {
		defer wg.Done()
		kafkaConsumer.Start(ctx, bridge.Handle)
	}()

	healthSrv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           health.NewRouter(map[string]health.Check{"rabbitmq": rabbitClient.Healthy}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	logger.Info("service running", slog.String("health_addr", cfg.HealthAddr))
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
	received := <-stopSignal
	logger.Info("shutdown signal received", slog.String("signal", received.String()))

	// Stop accepting new work, let in-flight messages finish, then close connections.
	cancel()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = healthSrv.Shutdown(shutdownCtx)

	if err := kafkaConsumer.Close(); err != nil {
		logger.Error("failed to close kafka consumer", slog.Any("error", err))
	}
	if err := rabbitClient.Close(); err != nil {
		logger.Error("failed to close rabbitmq connection", slog.Any("error", err))
	}
	logger.Info("service shutdown complete")
}
