package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kleanhub/laundry-orders/cmd/mainconfig"
	"github.com/kleanhub/laundry-orders/internal/api/router"
	appconfig "github.com/kleanhub/laundry-orders/internal/config"
	"github.com/kleanhub/laundry-orders/internal/messaging"
	"github.com/kleanhub/laundry-orders/internal/notify"
	"github.com/kleanhub/laundry-orders/internal/observability/metrics"
	"github.com/kleanhub/laundry-orders/internal/orders"
	"github.com/kleanhub/laundry-orders/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting laundry-orders API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"sms_provider", cfg.SMSProvider,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	businessPhone, err := messaging.NormalizePhone(cfg.BusinessPhone, cfg.DefaultCountryCode)
	if err != nil {
		logger.Error("BUSINESS_PHONE is not a valid phone number", "error", err)
		os.Exit(1)
	}

	provider, providerName, from, err := messaging.BuildProvider(messaging.ProviderConfig{
		Provider:         cfg.SMSProvider,
		PindoAPIToken:    cfg.PindoAPIToken,
		PindoSenderID:    cfg.PindoSenderID,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
	}, logger)
	if err != nil {
		logger.Error("failed to build messaging provider", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	messagingMetrics := metrics.NewMessagingMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	gateway := messaging.NewGateway(provider, providerName, from, logger,
		messaging.WithMetrics(messagingMetrics),
	)

	emailCopy := buildEmailCopy(cfg, logger)

	handlerOpts := []orders.HandlerOption{orders.WithOrderMetrics(orderMetrics)}
	if emailCopy != nil {
		handlerOpts = append(handlerOpts, orders.WithNotifier(emailCopy))
	}
	ordersHandler := orders.NewHandler(gateway, businessPhone, cfg.DefaultCountryCode, logger, handlerOpts...)

	r := router.New(&router.Config{
		Logger:             logger,
		OrdersHandler:      ordersHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BodyLimitBytes:     cfg.BodyLimitBytes,
		RateLimitPerSec:    cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildEmailCopy wires the optional operator email mirror. Returns nil when
// EMAIL_PROVIDER is unset.
func buildEmailCopy(cfg *appconfig.Config, logger *logging.Logger) *notify.Service {
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case appconfig.EmailProviderSendGrid:
		sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sg == nil {
			logger.Error("SENDGRID_API_KEY is not set; email copy disabled")
			return nil
		}
		sender = sg
	case appconfig.EmailProviderSES:
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config; email copy disabled", "error", err)
			return nil
		}
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	default:
		return nil
	}
	return notify.NewService(sender, cfg.OperatorEmail, logger)
}
