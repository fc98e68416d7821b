// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package intake

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pushward/internal/cache"
	"github.com/tomtom215/pushward/internal/delivery"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/metrics"
	"github.com/tomtom215/pushward/internal/validation"
)

const (
	handlerName = "deliver-notifications"

	defaultRequestTopic = "notification.deliver"
	defaultResultTopic  = "notification.delivered"

	reportCacheSize = 5000
	reportCacheTTL  = 15 * time.Minute
)

// Deliverer delivers one request. *delivery.Orchestrator implements it.
type Deliverer interface {
	Deliver(ctx context.Context, req *delivery.Request) (*delivery.Report, error)
}

// TransportFactory opens a subscriber for requests and a publisher for
// reports. It is called on every (re)start since the router closes both when
// it stops.
type TransportFactory func() (message.Subscriber, message.Publisher, error)

// ConsumerConfig holds intake settings.
type ConsumerConfig struct {
	RequestTopic string
	ResultTopic  string
	QueueGroup   string
	CloseTimeout time.Duration
}

// Consumer reads delivery requests and publishes delivery reports.
// It implements suture.Service.
type Consumer struct {
	cfg       ConsumerConfig
	deliverer Deliverer
	transport TransportFactory
	reports   *cache.LRU[[]byte]
	log       *logging.IntakeLogger
	wmLogger  watermill.LoggerAdapter
	ready     atomic.Bool
}

// NewConsumer creates a consumer. Empty topics fall back to the defaults.
func NewConsumer(cfg ConsumerConfig, deliverer Deliverer, transport TransportFactory, log *logging.IntakeLogger) (*Consumer, error) {
	if deliverer == nil {
		return nil, errors.New("intake: deliverer required")
	}
	if transport == nil {
		return nil, errors.New("intake: transport factory required")
	}
	if cfg.RequestTopic == "" {
		cfg.RequestTopic = defaultRequestTopic
	}
	if cfg.ResultTopic == "" {
		cfg.ResultTopic = defaultResultTopic
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}
	if log == nil {
		log = logging.NewIntakeLogger()
	}

	return &Consumer{
		cfg:       cfg,
		deliverer: deliverer,
		transport: transport,
		reports:   cache.NewLRU[[]byte](reportCacheSize, reportCacheTTL),
		log:       log,
		wmLogger:  watermill.NewSlogLogger(logging.NewSlogLogger()),
	}, nil
}

// Ready reports whether the router is running and consuming requests.
func (c *Consumer) Ready() bool {
	return c.ready.Load()
}

// CleanupReports drops expired cached reports and returns how many were
// removed.
func (c *Consumer) CleanupReports() int {
	return c.reports.CleanupExpired()
}

// Serve runs the router until ctx is canceled.
func (c *Consumer) Serve(ctx context.Context) error {
	sub, pub, err := c.transport()
	if err != nil {
		return fmt.Errorf("open intake transport: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.cfg.CloseTimeout}, c.wmLogger)
	if err != nil {
		_ = sub.Close()
		_ = pub.Close()
		return fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
	)
	router.AddHandler(handlerName, c.cfg.RequestTopic, sub, c.cfg.ResultTopic, pub, c.handle)

	runCtx, stop := context.WithCancel(ctx)
	watching := make(chan struct{})
	go func() {
		defer close(watching)
		select {
		case <-router.Running():
			c.ready.Store(true)
			c.log.LogSubscriptionStarted(c.cfg.RequestTopic, c.cfg.QueueGroup)
		case <-runCtx.Done():
		}
	}()

	runErr := router.Run(runCtx)
	stop()
	<-watching
	c.ready.Store(false)
	c.log.LogRouterStopped()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("intake router: %w", runErr)
	}
	return errors.New("intake router stopped unexpectedly")
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "intake-consumer"
}

// handle processes one request message. Requests that can never succeed are
// acknowledged and dropped; delivery errors are returned so the broker
// redelivers.
func (c *Consumer) handle(msg *message.Message) ([]*message.Message, error) {
	start := time.Now()
	metrics.RecordNATSConsume()

	correlationID := middleware.MessageCorrelationID(msg)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := logging.ContextWithCorrelationID(msg.Context(), correlationID)

	if cached, ok := c.reports.Get(msg.UUID); ok {
		logging.Ctx(ctx).Debug().Str("message_id", msg.UUID).Msg("Republishing cached delivery report")
		return []*message.Message{c.reportMessage(ctx, correlationID, cached)}, nil
	}

	req, err := decodeRequest(msg.Payload)
	if err != nil {
		metrics.RecordNATSParseFailed()
		c.log.LogRequestRejected(ctx, msg.UUID, err)
		return nil, nil
	}

	ctx = logging.ContextWithNotificationID(ctx, req.Notification.ID)
	c.log.LogRequestReceived(ctx, msg.UUID, len(req.Devices))

	report, err := c.deliverer.Deliver(ctx, req)
	if err != nil {
		if errors.Is(err, delivery.ErrInvalidRequest) {
			metrics.RecordNATSParseFailed()
			c.log.LogRequestRejected(ctx, msg.UUID, err)
			return nil, nil
		}
		return nil, fmt.Errorf("deliver notification %s: %w", req.Notification.ID, err)
	}
	report.MessageID = msg.UUID

	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal delivery report: %w", err)
	}
	c.reports.Add(msg.UUID, body)

	skipped := 0
	if report.Skipped {
		skipped = 1
	}
	c.log.LogRequestDelivered(ctx, report.Delivered, report.Failed, skipped, time.Since(start))
	metrics.RecordNATSProcessed(time.Since(start))

	return []*message.Message{c.reportMessage(ctx, correlationID, body)}, nil
}

func (c *Consumer) reportMessage(ctx context.Context, correlationID string, body []byte) *message.Message {
	out := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(correlationID, out)
	metrics.RecordNATSPublish()
	c.log.LogReportPublished(ctx, c.cfg.ResultTopic)
	return out
}

func decodeRequest(payload []byte) (*delivery.Request, error) {
	var req delivery.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode delivery request: %w", err)
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, fmt.Errorf("invalid delivery request: %w", verr)
	}
	return &req, nil
}
