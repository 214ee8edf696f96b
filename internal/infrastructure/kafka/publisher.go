package kafka

import (
	"context"
	"fmt"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/kafka"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
)

// Producer is the subset of the Kafka producer the publisher needs
type Producer interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.Event) error
}

// EventPublisher bridges domain events onto Kafka topics. Publishing is
// best effort: the state change has already committed, so a broker
// outage costs notifications, never consistency.
type EventPublisher struct {
	producer Producer
	source   string
	logger   *logging.Logger
}

// NewEventPublisher creates a new Kafka event publisher
func NewEventPublisher(producer Producer, source string, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		source:   source,
		logger:   logger,
	}
}

// Publish sends each domain event to the item events topic
func (p *EventPublisher) Publish(ctx context.Context, events []domain.DomainEvent) error {
	var firstErr error
	for _, domainEvent := range events {
		event, err := kafka.NewEvent(domainEvent.EventType(), p.source, subjectOf(domainEvent), domainEvent)
		if err != nil {
			p.logger.WithError(err).Error("failed to encode domain event",
				"eventType", domainEvent.EventType())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := p.producer.PublishEvent(ctx, kafka.Topics.ItemEvents, event); err != nil {
			p.logger.WithError(err).Warn("failed to publish domain event",
				"eventType", domainEvent.EventType(), "subject", event.Subject)
			if firstErr == nil {
				firstErr = fmt.Errorf("publish %s: %w", domainEvent.EventType(), err)
			}
		}
	}
	return firstErr
}

// subjectOf extracts the item ID the event is about
func subjectOf(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.ItemCreatedEvent:
		return e.ItemID
	case *domain.ItemAdvancedEvent:
		return e.ItemID
	case *domain.ItemCompletedEvent:
		return e.ItemID
	case *domain.ItemPausedEvent:
		return e.ItemID
	case *domain.ItemResumedEvent:
		return e.ItemID
	case *domain.ItemErroredEvent:
		return e.ItemID
	case *domain.ItemFlaggedEvent:
		return e.ItemID
	case *domain.ItemFlagClearedEvent:
		return e.ItemID
	case *domain.ItemArchivedEvent:
		return e.ItemID
	default:
		return ""
	}
}
