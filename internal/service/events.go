package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	TopicOrderEvents   = "order_events"
	TopicProductEvents = "product_events"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is fire and forget: the state change has already been committed, so a broker
// failure is only logged.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
