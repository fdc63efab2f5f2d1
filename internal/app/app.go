// Package app wires configuration, storage, external collaborators and the
// HTTP surface into a running reconciliation service.
package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"paypalplus/config"
	controller "paypalplus/internal/controller/http"
	"paypalplus/internal/controller/http/handlers"
	"paypalplus/internal/domain/ipn"
	"paypalplus/internal/domain/refund"
	kafka_external "paypalplus/internal/external/kafka"
	"paypalplus/internal/external/opensearch"
	"paypalplus/internal/external/paypal"
	order_repo "paypalplus/internal/repo/order"
	"paypalplus/pkg/health"
	"paypalplus/pkg/logger"
	"paypalplus/pkg/metrics"
	"paypalplus/pkg/postgres"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

//go:embed migrations/*.sql
var MigrationFS embed.FS

const shutdownTimeout = 10 * time.Second

func Run(cfg config.Config) error {
	logger.Setup(logger.Options{
		Level:   cfg.LogLevel,
		Console: cfg.LogFormat == "console",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ApplyMigrations(cfg.PgURL, MigrationFS); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	store := order_repo.NewPgStore(pg)

	vocabulary := ipn.VocabularyIPN
	if cfg.StatusVocabulary == "webhook" {
		vocabulary = ipn.VocabularyWebhook
	}

	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = paypal.LiveVerifyURL
		if cfg.PayPalSandbox {
			verifyURL = paypal.SandboxVerifyURL
		}
	}
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	verifier := paypal.NewVerifier(verifyURL, cfg.UserAgent, httpClient)

	publisher := kafka_external.NewPublisher(cfg.KafkaBrokers, cfg.KafkaPaymentUpdateTopic)
	defer publisher.Close()
	events := kafka_external.NewPaymentUpdatePublisher(publisher)

	var audit ipn.AuditSink
	if len(cfg.OpensearchUrls) > 0 {
		audit, err = opensearch.NewAuditSink(ctx, cfg.OpensearchUrls, cfg.OpensearchIndexAudit)
		if err != nil {
			return fmt.Errorf("connect opensearch: %w", err)
		}
	}

	reconciler := ipn.NewReconciler(store, vocabulary, verifier, events, audit)

	refundProvider := paypal.NewRefundClient(
		cfg.PayPalAPIBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, httpClient)
	refunder := refund.NewRefunder(refundProvider, store, vocabulary)

	healthRegistry := health.NewRegistry(
		health.NewPostgresChecker(pg.Pool),
		health.NewKafkaChecker(cfg.KafkaBrokers),
	)

	router := controller.NewRouter(
		handlers.NewIPNHandler(reconciler, cfg.PayPalSandbox),
		handlers.NewOrderHandler(store),
		handlers.NewRefundHandler(store, refunder),
		healthRegistry,
	)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		logger.CorrelationMiddleware(),
		logger.RequestLogger(),
		metrics.GinMiddleware(),
	)
	router.SetUp(engine)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
