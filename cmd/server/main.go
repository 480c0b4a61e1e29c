// Server runs the payment-alerts HTTP service: webhook ingestion, logs,
// dashboard, health, and the background sheet monitor.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-alerts/backend/internal/config"
	"payment-alerts/backend/internal/dashboard"
	"payment-alerts/backend/internal/monitor"
	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/notify/producer"
	paymenthandler "payment-alerts/backend/internal/payment/handler"
	"payment-alerts/backend/internal/payment/resolver"
	"payment-alerts/backend/internal/payment/service"
	"payment-alerts/backend/internal/server"
	"payment-alerts/backend/internal/storage"
	"payment-alerts/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "payment-alerts", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	store, closeStore := storage.Select(ctx, cfg)
	defer func() { _ = closeStore() }()

	sender, closeSender := buildSender(cfg)
	defer func() { _ = closeSender() }()
	sender = otel.WithAlertTelemetry(sender, providers.LoggerProvider)

	res := &resolver.Resolver{
		DefaultCurrency: cfg.DefaultCurrency,
		DefaultOrgID:    cfg.DefaultOrgID,
		DefaultOrgName:  cfg.DefaultOrgName,
		OrgDirectory:    cfg.OrganizationDirectory(),
	}
	ingestor := service.NewIngestor(res, store, sender)

	srv := server.New(cfg.HTTPAddr, server.Deps{
		Payments:  paymenthandler.New(ingestor, cfg.ServerBaseURL),
		Dashboard: dashboard.NewHandler(store, cfg.DefaultCurrency),
	})

	if cfg.EnableMonitoring {
		go monitor.New(store, sender, cfg.MonitorInterval()).Run(ctx)
	} else {
		log.Println("monitor: disabled (ENABLE_SHEET_MONITORING=false)")
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// buildSender picks the alert path: Kafka queueing when brokers are set
// (cmd/worker delivers), direct Twilio when configured, otherwise mock.
func buildSender(cfg *config.Config) (notify.Sender, func() error) {
	noop := func() error { return nil }

	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		queue := producer.NewKafkaQueue(brokers, cfg.NotifyKafkaTopic)
		if queue != nil {
			log.Printf("notify: queueing alerts to Kafka topic %s", cfg.NotifyKafkaTopic)
			return queue, queue.Close
		}
	}

	if cfg.TwilioConfigured() {
		log.Println("notify: sending WhatsApp alerts via Twilio")
		return notify.NewTwilioSender(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			cfg.TwilioFromNumber, cfg.TwilioToNumber,
		), noop
	}

	log.Println("notify: Twilio not configured, running in mock mode")
	return notify.MockSender{}, noop
}
