package events

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/lifecycle"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Routing keys of order events.
const (
	OrderCreated       = "order.created"
	OrderCancelled     = "order.cancelled"
	OrderStatusChanged = "order.status_changed"
)

// Publisher delivers an encoded event to a broker. key groups events of the
// same order (kafka partition key, amqp correlation id).
type Publisher interface {
	Publish(routingKey, key string, body []byte) error
	Close() error
}

// Envelope wraps every order event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderPayload is the payload of every order event.
type OrderPayload struct {
	OrderID    string           `json:"order_id"`
	UserID     string           `json:"user_id"`
	Status     lifecycle.Status `json:"status"`
	PrevStatus lifecycle.Status `json:"prev_status,omitempty"`
	Total      string           `json:"total,omitempty"`
}

// NewEnvelope wraps payload in an envelope of the given type.
func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Emitter publishes order events and never fails its caller: publishing errors are logged.
type Emitter struct {
	publisher Publisher
	producer  string
	logger    *zap.Logger
}

// NewEmitter creates an Emitter. A nil publisher drops every event.
func NewEmitter(publisher Publisher, producer string, logger *zap.Logger) *Emitter {
	if publisher == nil {
		publisher = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{publisher: publisher, producer: producer, logger: logger}
}

// Emit publishes an order event.
func (e *Emitter) Emit(eventType string, p OrderPayload) {
	env, err := NewEnvelope(eventType, e.producer, p.OrderID, p)
	if err != nil {
		e.logger.Warn("Failed to build order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	body, err := json.Marshal(env)
	if err != nil {
		e.logger.Warn("Failed to encode order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := e.publisher.Publish(eventType, p.OrderID, body); err != nil {
		e.logger.Warn("Failed to publish order event",
			zap.String("type", eventType),
			zap.String("order_id", p.OrderID),
			zap.Error(err))
		return
	}
	e.logger.Debug("Published order event", zap.String("type", eventType), zap.String("order_id", p.OrderID))
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(string, string, []byte) error { return nil }
func (Nop) Close() error                         { return nil }
