package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ProducerConfig carries the subset of writer knobs the service tunes.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	BatchTimeout time.Duration
	RequireAcks  int // -1 = all, 0 = none, 1 = leader only
}

// Producer wraps a kafka-go writer.
type Producer struct {
	writer *kafka.Writer
	topic  string
	closed bool
	mu     sync.RWMutex
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.RequireAcks {
	case 0:
		requiredAcks = kafka.RequireNone
	case 1:
		requiredAcks = kafka.RequireOne
	default:
		requiredAcks = kafka.RequireAll
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // hash by key for per-entity ordering
		RequiredAcks: requiredAcks,
		MaxAttempts:  maxAttempts,
		BatchTimeout: batchTimeout,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
	}

	return &Producer{
		writer: writer,
		topic:  cfg.Topic,
	}, nil
}

// Publish writes one message to the producer's topic.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrProducerClosed
	}

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	return p.writer.WriteMessages(ctx, kafkaMsg)
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
