// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/pushward/internal/api"
	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/delivery"
	"github.com/tomtom215/pushward/internal/intake"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/metrics"
	"github.com/tomtom215/pushward/internal/push"
	"github.com/tomtom215/pushward/internal/supervisor"
	"github.com/tomtom215/pushward/internal/supervisor/services"
)

const reportJanitorInterval = time.Minute

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Version: version,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("apns", cfg.APNs.Enabled).
		Bool("fcm", cfg.FCM.Enabled).
		Bool("webpush", cfg.WebPush.Enabled).
		Bool("nats", cfg.NATS.Enabled).
		Msg("Starting Pushward")

	registry := push.NewFromConfig(cfg, push.WithLogger(logging.WithComponent("push")))
	for _, status := range registry.Status() {
		logging.Info().
			Str("platform", string(status.Platform)).
			Bool("configured", status.Configured).
			Msg("Push provider")
	}
	if !registry.AnyConfigured() {
		logging.Warn().Msg("No push provider is configured; every delivery will fail with NOT_CONFIGURED")
	}
	if cfg.Delivery.AllowUnencryptedRetry {
		logging.Warn().Msg("DELIVERY_ALLOW_UNENCRYPTED_RETRY is on: oversized encrypted payloads may be resent in plaintext")
	}

	orchestrator := delivery.New(registry, cfg.Delivery, logging.WithComponent("delivery"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.NATS.CloseTimeout,
	})

	var checks []api.ReadinessCheck
	if cfg.NATS.Enabled {
		consumer, err := newIntakeConsumer(cfg, orchestrator)
		if err != nil {
			return err
		}
		tree.AddDeliveryService(consumer)
		tree.AddDeliveryService(services.NewPeriodicService("report-cache-janitor", reportJanitorInterval,
			func(context.Context) {
				if n := consumer.CleanupReports(); n > 0 {
					logging.Debug().Int("removed", n).Msg("Expired cached delivery reports")
				}
			}))
		checks = append(checks, api.ReadinessCheck{Name: "intake", Ready: consumer.Ready})
	} else {
		logging.Info().Msg("NATS intake disabled")
	}

	var deliverer api.Deliverer
	if cfg.Server.DeliverAPI {
		deliverer = orchestrator
		if cfg.Server.DeliverAPIToken == "" {
			logging.Warn().Msg("DELIVER_API is enabled without DELIVER_API_TOKEN; keep the ops port private")
		}
	}

	router, err := api.NewRouter(cfg.Server, api.NewHandler(registry, deliverer, version, checks...))
	if err != nil {
		return err
	}
	server := services.NewOpsServer(cfg.Server, router.SetupChi())
	tree.AddAPIService(services.NewHTTPServerService(server.Addr, server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	logging.Info().Msg("Pushward stopped")
	return nil
}

func newIntakeConsumer(cfg *config.Config, orchestrator *delivery.Orchestrator) (*intake.Consumer, error) {
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())
	transport := func() (message.Subscriber, message.Publisher, error) {
		sub, err := intake.NewNATSSubscriber(cfg.NATS, wmLogger)
		if err != nil {
			return nil, nil, err
		}
		pub, err := intake.NewNATSPublisher(cfg.NATS, wmLogger)
		if err != nil {
			_ = sub.Close()
			return nil, nil, err
		}
		return sub, pub, nil
	}

	consumer, err := intake.NewConsumer(intake.ConsumerConfig{
		RequestTopic: cfg.NATS.RequestTopic,
		ResultTopic:  cfg.NATS.ResultTopic,
		QueueGroup:   cfg.NATS.QueueGroup,
		CloseTimeout: cfg.NATS.CloseTimeout,
	}, orchestrator, transport, logging.NewIntakeLogger())
	if err != nil {
		return nil, fmt.Errorf("create intake consumer: %w", err)
	}
	return consumer, nil
}
