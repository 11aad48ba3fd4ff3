package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/inventory/internal/logging"
)

const (
	TopicUserEvents    = "user_events"
	TopicProductEvents = "product_events"
)

// Publisher delivers domain events. Delivery failures never fail the
// operation that produced the event.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
