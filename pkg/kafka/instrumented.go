package kafka

import (
	"context"
	"time"

	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/metrics"
)

// InstrumentedProducer wraps Producer with metrics and logging
type InstrumentedProducer struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewInstrumentedProducer creates a producer that records publish metrics
func NewInstrumentedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// PublishEvent publishes an event and records the outcome
func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *Event) error {
	start := time.Now()
	err := p.producer.PublishEvent(ctx, topic, event)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.Type, err == nil, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, event.Type, err == nil, duration)
	}

	return err
}

// PublishBatch publishes multiple events and records the outcome
func (p *InstrumentedProducer) PublishBatch(ctx context.Context, topic string, events []*Event) error {
	start := time.Now()
	err := p.producer.PublishBatch(ctx, topic, events)
	duration := time.Since(start)

	if p.metrics != nil {
		for _, event := range events {
			p.metrics.RecordKafkaPublish(topic, event.Type, err == nil, duration)
		}
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, "batch", err == nil, duration)
	}

	return err
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}
