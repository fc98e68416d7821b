// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pushward/internal/delivery"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/models"
)

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []*delivery.Request
	err   error
}

func (f *fakeDeliverer) Deliver(_ context.Context, req *delivery.Request) (*delivery.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &delivery.Report{
		NotificationID: req.Notification.ID,
		Success:        true,
		Delivered:      len(req.Devices),
		Results:        []delivery.SendResult{},
	}, nil
}

func (f *fakeDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type harness struct {
	pubsub   *gochannel.GoChannel
	consumer *Consumer
	results  <-chan *message.Message
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
}

func startConsumer(t *testing.T, deliverer Deliverer) *harness {
	t.Helper()

	pubsub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	transport := func() (message.Subscriber, message.Publisher, error) {
		return pubsub, pubsub, nil
	}

	consumer, err := NewConsumer(ConsumerConfig{CloseTimeout: time.Second}, deliverer, transport,
		logging.NewIntakeLoggerWithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	results, err := pubsub.Subscribe(ctx, defaultResultTopic)
	if err != nil {
		cancel()
		t.Fatalf("subscribe results: %v", err)
	}

	h := &harness{
		pubsub:   pubsub,
		consumer: consumer,
		results:  results,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go func() {
		h.err = consumer.Serve(ctx)
		close(h.done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !consumer.Ready() {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("consumer did not become ready")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
	}
}

func (h *harness) publish(t *testing.T, msg *message.Message) {
	t.Helper()
	if err := h.pubsub.Publish(defaultRequestTopic, msg); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func (h *harness) nextReport(t *testing.T) (*message.Message, delivery.Report) {
	t.Helper()
	select {
	case msg := <-h.results:
		msg.Ack()
		var report delivery.Report
		if err := json.Unmarshal(msg.Payload, &report); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		return msg, report
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery report")
	}
	return nil, delivery.Report{}
}

func requestMessage(t *testing.T, notificationID string) *message.Message {
	t.Helper()
	req := delivery.Request{
		Notification: &models.Notification{
			ID: notificationID,
			Message: &models.Message{
				ID:           "msg-" + notificationID,
				Title:        "Build finished",
				DeliveryType: models.DeliveryTypeNormal,
				Bucket:       models.Bucket{ID: "ci", Name: "CI"},
			},
		},
		Devices: []*models.UserDevice{
			{ID: "dev-1", UserID: "user-1", Platform: models.PlatformAndroid, DeviceToken: "token-abcdefghijklmnop"},
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return message.NewMessage(watermill.NewUUID(), body)
}

func TestConsumer_DeliversAndPublishesReport(t *testing.T) {
	deliverer := &fakeDeliverer{}
	h := startConsumer(t, deliverer)

	msg := requestMessage(t, "n-1")
	middleware.SetCorrelationID("corr-123", msg)
	h.publish(t, msg)

	out, report := h.nextReport(t)
	if report.NotificationID != "n-1" {
		t.Errorf("NotificationID = %q, want n-1", report.NotificationID)
	}
	if report.MessageID != msg.UUID {
		t.Errorf("MessageID = %q, want %q", report.MessageID, msg.UUID)
	}
	if !report.Success || report.Delivered != 1 {
		t.Errorf("report = %+v, want one successful delivery", report)
	}
	if got := middleware.MessageCorrelationID(out); got != "corr-123" {
		t.Errorf("correlation id = %q, want corr-123", got)
	}
	if deliverer.count() != 1 {
		t.Errorf("Deliver calls = %d, want 1", deliverer.count())
	}
}

func TestConsumer_RedeliveryRepublishesCachedReport(t *testing.T) {
	deliverer := &fakeDeliverer{}
	h := startConsumer(t, deliverer)

	first := requestMessage(t, "n-2")
	h.publish(t, first)
	_, report1 := h.nextReport(t)

	again := message.NewMessage(first.UUID, first.Payload)
	h.publish(t, again)
	_, report2 := h.nextReport(t)

	if deliverer.count() != 1 {
		t.Errorf("Deliver calls = %d, want 1", deliverer.count())
	}
	if report1.NotificationID != report2.NotificationID || report2.MessageID != first.UUID {
		t.Errorf("republished report = %+v, want copy of %+v", report2, report1)
	}
}

func TestConsumer_DropsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "not json", body: []byte("{not json")},
		{name: "missing notification", body: []byte(`{"devices":[]}`)},
		{name: "missing message", body: []byte(`{"notification":{"id":"n-x"}}`)},
		{name: "bad platform", body: []byte(`{"notification":{"id":"n-x","message":{"id":"m","title":"t","deliveryType":"NORMAL","bucket":{"id":"b"}}},"devices":[{"id":"d","platform":"BLACKBERRY"}]}`)},
		{name: "bad delivery type", body: []byte(`{"notification":{"id":"n-x","message":{"id":"m","title":"t","deliveryType":"LOUD","bucket":{"id":"b"}}}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliverer := &fakeDeliverer{}
			h := startConsumer(t, deliverer)

			h.publish(t, message.NewMessage(watermill.NewUUID(), tt.body))
			h.publish(t, requestMessage(t, "n-valid"))

			_, report := h.nextReport(t)
			if report.NotificationID != "n-valid" {
				t.Errorf("first report is for %q, want n-valid", report.NotificationID)
			}
			if deliverer.count() != 1 {
				t.Errorf("Deliver calls = %d, want 1", deliverer.count())
			}
		})
	}
}

func TestConsumer_DropsRequestsRejectedByOrchestrator(t *testing.T) {
	deliverer := &fakeDeliverer{err: fmt.Errorf("%w: missing message", delivery.ErrInvalidRequest)}
	h := startConsumer(t, deliverer)

	h.publish(t, requestMessage(t, "n-3"))

	select {
	case msg := <-h.results:
		t.Fatalf("unexpected report %s", msg.Payload)
	case <-time.After(200 * time.Millisecond):
	}
	if deliverer.count() != 1 {
		t.Errorf("Deliver calls = %d, want 1", deliverer.count())
	}
}

func TestConsumer_ReadyClearsAfterStop(t *testing.T) {
	h := startConsumer(t, &fakeDeliverer{})

	h.cancel()
	select {
	case <-h.done:
		if !errors.Is(h.err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", h.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if h.consumer.Ready() {
		t.Error("Ready() = true after stop")
	}
}

func TestConsumer_TransportError(t *testing.T) {
	boom := errors.New("nats down")
	c, err := NewConsumer(ConsumerConfig{}, &fakeDeliverer{}, func() (message.Subscriber, message.Publisher, error) {
		return nil, nil, boom
	}, nil)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if err := c.Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve() = %v, want wrapped %v", err, boom)
	}
}

func TestNewConsumer_RequiresDependencies(t *testing.T) {
	transport := func() (message.Subscriber, message.Publisher, error) { return nil, nil, nil }
	if _, err := NewConsumer(ConsumerConfig{}, nil, transport, nil); err == nil {
		t.Error("expected error for nil deliverer")
	}
	if _, err := NewConsumer(ConsumerConfig{}, &fakeDeliverer{}, nil, nil); err == nil {
		t.Error("expected error for nil transport")
	}
}

func TestConsumer_CleanupReportsKeepsFreshEntries(t *testing.T) {
	deliverer := &fakeDeliverer{}
	h := startConsumer(t, deliverer)

	h.publish(t, requestMessage(t, "n-4"))
	h.nextReport(t)

	if removed := h.consumer.CleanupReports(); removed != 0 {
		t.Errorf("CleanupReports() = %d, want 0 for fresh reports", removed)
	}
}
