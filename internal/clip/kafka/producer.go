package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"cliplink/internal/clip/models"
)

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int           // 0 means the default of 3
	RetryBackoff time.Duration // 0 means the default of 100ms
	WriteTimeout time.Duration // 0 means the default of 10s
	Logger       zerolog.Logger
}

// Producer publishes clip domain events. It is invoked synchronously on the
// request path, so callers treat failures as best-effort.
type Producer struct {
	writer *kafkago.Writer
	config ProducerConfig
	logger zerolog.Logger
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka producer: brokers list is empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka producer: topic is empty")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("kafka producer: max_retries cannot be negative")
	}
	if cfg.RetryBackoff < 0 {
		return nil, fmt.Errorf("kafka producer: retry_backoff cannot be negative")
	}
	if cfg.WriteTimeout < 0 {
		return nil, fmt.Errorf("kafka producer: write_timeout cannot be negative")
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
		},
		config: cfg,
		logger: cfg.Logger.With().Str("component", "kafka_producer").Logger(),
	}, nil
}

// PublishEvent writes the event keyed by its aggregate id, retrying
// retriable broker errors with a fixed backoff.
func (p *Producer) PublishEvent(ctx context.Context, event models.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka marshal event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.AggregateID()),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID().String())},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryBackoff):
			}
		}

		lastErr = p.writer.WriteMessages(ctx, msg)
		if lastErr == nil {
			p.logger.Debug().
				Str("event_type", event.EventType()).
				Str("aggregate_id", event.AggregateID()).
				Msg("event published")
			return nil
		}
		if !isRetriableError(lastErr) {
			break
		}

		p.logger.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Msg("publish attempt failed")
	}

	return fmt.Errorf("kafka publish: %w", lastErr)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// isRetriableError reports whether another write attempt can help. Context
// cancellation never is; broker-side errors follow kafka's own Temporary
// classification; plain network errors are worth one more try.
func isRetriableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var kerr kafkago.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}

	var nerr net.Error
	return errors.As(err, &nerr)
}
