// Package eventbus publishes coupon lifecycle events to Kafka.
package eventbus

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/daily-coupon/internal/platform/logging"
	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

var errKafkaTransient = crerr.New("kafka transient failure")

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisherConfig struct {
	Brokers        []string
	Topic          string
	WriteTimeout   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type KafkaPublisher struct {
	writer         MessageWriter
	topic          string
	writeTimeout   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

// NewKafkaWriter builds a writer keyed by coupon id so events of one coupon
// land on one partition in order.
func NewKafkaWriter(cfg KafkaPublisherConfig) (*kafka.Writer, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	if len(brokers) == 0 {
		return nil, crerr.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, crerr.New("kafka topic is required")
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  strings.TrimSpace(cfg.Topic),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}, nil
}

func NewKafkaPublisher(writer MessageWriter, cfg KafkaPublisherConfig, logger *logging.Logger) *KafkaPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &KafkaPublisher{
		writer:         writer,
		topic:          strings.TrimSpace(cfg.Topic),
		writeTimeout:   timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreakerFromConfig(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event usecase.CouponEvent) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "kafka circuit breaker rejected event", "state", p.breaker.State(), "event", event.Type)
			return fmt.Errorf("%w: event bus is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	value, err := encodeEvent(event)
	if err != nil {
		return crerr.Wrap(err, "encode coupon event")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("kafka.topic", p.topic),
			attribute.String("coupon.event", event.Type),
			attribute.String("coupon.id", event.CouponID),
		)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.CouponID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		callErr := crerr.Wrapf(errKafkaTransient, "write event=%s coupon_id=%s: %v", event.Type, event.CouponID, err)
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.recordCircuitResult(nil)
	p.logger.DebugContext(ctx, "coupon event published", "event", event.Type, "coupon_id", event.CouponID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encodeEvent(event usecase.CouponEvent) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(event); err != nil {
		return nil, err
	}
	return append([]byte(nil), bytes.TrimRight(buf.B, "\n")...), nil
}

func (p *KafkaPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if crerr.Is(err, errKafkaTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}
