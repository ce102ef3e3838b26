package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type writerStub struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *writerStub) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:      uuid.MustParse("5f0c6a1e-7d3b-4d8e-9a55-2f7e1b0c9d11"),
		BuyerID: 7,
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Lamp", Price: decimal.RequireFromString("10.50")},
		},
		Payment:   model.PaymentOutcome{Success: true, TransactionID: "tx-1", Amount: decimal.RequireFromString("10.50")},
		Status:    model.OrderStatusNotProcessed,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC),
	}
}

func TestKafkaPublisherPublish(t *testing.T) {
	writer := &writerStub{}
	pub := newKafkaPublisher(writer, testLogger())

	if err := pub.Publish(context.Background(), OrderCreated(sampleOrder())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(writer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "5f0c6a1e-7d3b-4d8e-9a55-2f7e1b0c9d11" {
		t.Fatalf("unexpected key %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(TypeOrderCreated) {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			OrderID string `json:"orderId"`
			BuyerID int64  `json:"buyerId"`
			Status  string `json:"status"`
			Amount  string `json:"amount"`
			Items   []struct {
				ProductID string `json:"productId"`
				Price     string `json:"price"`
			} `json:"items"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if decoded.Type != "order.created" || decoded.Payload.BuyerID != 7 || decoded.Payload.Status != "Not Processed" {
		t.Fatalf("unexpected payload %+v", decoded)
	}
	if decoded.Payload.Amount != "10.5" || len(decoded.Payload.Items) != 1 || decoded.Payload.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected payload %+v", decoded.Payload)
	}
}

func TestKafkaPublisherWriteError(t *testing.T) {
	writer := &writerStub{err: errors.New("broker down")}
	pub := newKafkaPublisher(writer, testLogger())
	if err := pub.Publish(context.Background(), OrderCreated(sampleOrder())); err == nil {
		t.Fatal("expected error")
	}
	if err := pub.Close(); err != nil || !writer.closed {
		t.Fatalf("expected writer to be closed, err=%v", err)
	}
}

func TestOrderStatusChanged(t *testing.T) {
	order := sampleOrder()
	order.Status = model.OrderStatusShipped
	ev := OrderStatusChanged(order, model.OrderStatusProcessing)

	if ev.Type != TypeOrderStatusChanged || ev.Key != order.ID.String() || !ev.OccurredAt.Equal(order.UpdatedAt) {
		t.Fatalf("unexpected event %+v", ev)
	}
	payload, ok := ev.Payload.(orderPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", ev.Payload)
	}
	if payload.PreviousStatus != model.OrderStatusProcessing || payload.Status != model.OrderStatusShipped || len(payload.Items) != 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestPostPaymentInconsistency(t *testing.T) {
	attempt := model.CheckoutAttempt{Key: "key", BuyerID: 3, TransactionID: "tx", Amount: decimal.NewFromInt(5)}
	ev := PostPaymentInconsistency(attempt, errors.New("db down"))

	payload := ev.Payload.(inconsistencyPayload)
	if ev.Key != "key" || payload.Reason != "db down" || payload.TransactionID != "tx" || payload.BuyerID != 3 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if PostPaymentInconsistency(attempt, nil).Payload.(inconsistencyPayload).Reason != "" {
		t.Fatal("expected empty reason without cause")
	}
}

func TestNewPublisherSelectsImplementation(t *testing.T) {
	pub := newPublisher(publisherParams{Config: &config.Config{}, Logger: testLogger()})
	if _, ok := pub.(Nop); !ok {
		t.Fatalf("expected nop publisher, got %T", pub)
	}
	if err := pub.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("nop publish failed: %v", err)
	}

	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "orders"}
	pub = newPublisher(publisherParams{Config: cfg, Logger: testLogger()})
	kp, ok := pub.(*KafkaPublisher)
	if !ok {
		t.Fatalf("expected kafka publisher, got %T", pub)
	}
	w := kp.writer.(*kafka.Writer)
	if w.Topic != "orders" {
		t.Fatalf("unexpected topic %q", w.Topic)
	}
}

func TestRegisterLifecycleClosesPublisher(t *testing.T) {
	writer := &writerStub{}
	lc := fxtest.NewLifecycle(t)
	registerLifecycle(lc, newKafkaPublisher(writer, testLogger()))

	lc.RequireStart()
	lc.RequireStop()
	if !writer.closed {
		t.Fatal("expected publisher to be closed on stop")
	}
}
