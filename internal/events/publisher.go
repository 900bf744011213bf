package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/models"
)

// EventType identifies an order event on the wire.
type EventType string

const (
	EventTypeOrderCompleted EventType = "order.completed"
)

// OrderEvent is the payload published for every committed checkout.
type OrderEvent struct {
	ID                   string          `json:"id"`
	Type                 EventType       `json:"type"`
	OrderID              int64           `json:"order_id"`
	UserID               int64           `json:"user_id"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	PaymentMethod        string          `json:"payment_method"`
	TransactionReference string          `json:"transaction_reference"`
	Timestamp            time.Time       `json:"timestamp"`
}

// Publisher emits order events. Publishing is best effort: a publish failure
// is logged and never fails the checkout that produced it.
type Publisher interface {
	PublishOrderCompleted(ctx context.Context, order *models.Order) error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher for the orders topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.Named("event-publisher"),
	}
}

// PublishOrderCompleted emits an order.completed event keyed by order id.
func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, order *models.Order) error {
	event := OrderEvent{
		ID:                   uuid.NewString(),
		Type:                 EventTypeOrderCompleted,
		OrderID:              order.ID,
		UserID:               order.UserID,
		TotalAmount:          order.TotalAmount,
		PaymentMethod:        order.PaymentMethod,
		TransactionReference: order.TransactionReference,
		Timestamp:            time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish order event",
			zap.String("event_id", event.ID),
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("order event published",
		zap.String("event_id", event.ID),
		zap.Int64("order_id", order.ID),
	)
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// MockPublisher records published events for tests.
type MockPublisher struct {
	Events []OrderEvent
	Err    error
}

// NewMockPublisher creates an in-memory publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]OrderEvent, 0)}
}

func (m *MockPublisher) PublishOrderCompleted(ctx context.Context, order *models.Order) error {
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, OrderEvent{
		Type:                 EventTypeOrderCompleted,
		OrderID:              order.ID,
		UserID:               order.UserID,
		TotalAmount:          order.TotalAmount,
		TransactionReference: order.TransactionReference,
	})
	return nil
}
