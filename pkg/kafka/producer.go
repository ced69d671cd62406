package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrClosed is returned by Publish once the producer is closed.
var ErrClosed = errors.New("kafka producer closed")

// ErrBufferFull is returned by Publish when the inbox cannot take another message.
var ErrBufferFull = errors.New("kafka producer buffer full")

// Config holds the producer settings.
type Config struct {
	Brokers      []string
	Topic        string
	Buffer       int
	WriteTimeout time.Duration
}

// Producer buffers messages and writes them to a topic from one goroutine.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	done    chan struct{}
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewProducer creates a producer and starts its writer loop.
func NewProducer(cfg Config, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	p := &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, cfg.Buffer),
		done:    make(chan struct{}),
		timeout: cfg.WriteTimeout,
		logger:  logger,
	}
	go p.loop()
	return p
}

func (p *Producer) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			p.logger.Warn("Failed to write kafka message",
				zap.String("topic", p.w.Topic),
				zap.ByteString("key", m.Key),
				zap.Error(err))
		}
		cancel()
	}
	if err := p.w.Close(); err != nil {
		p.logger.Warn("Failed to close kafka writer", zap.Error(err))
	}
}

// Publish queues a message. Messages with the same key land on the same
// partition; the event type travels in the "event_type" header.
func (p *Producer) Publish(eventType, key string, body []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close flushes queued messages and waits for the writer loop to exit.
func (p *Producer) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}
