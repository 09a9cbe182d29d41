// Package pubsub publishes run notifications to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/npblake/sponavi-crawler/internal/baseball"
)

// Attribute keys set on every published message.
const (
	AttrEvent          = "event"
	AttrNotificationID = "notification_id"
)

// Publisher implements baseball.Notifier over a Pub/Sub topic.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	ids    baseball.IDGenerator
	logger *zap.Logger
}

// Open connects to projectID and verifies that topicID exists.
func Open(
	ctx context.Context,
	projectID, topicID string,
	ids baseball.IDGenerator,
	logger *zap.Logger,
	opts ...option.ClientOption,
) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil || !exists {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close pubsub client after topic check", zap.Error(closeErr))
		}
		if err == nil {
			err = fmt.Errorf("topic %q does not exist", topicID)
		}
		return nil, fmt.Errorf("failed to get pubsub topic: %w", err)
	}
	p := New(topic, ids, logger)
	p.client = client
	return p, nil
}

// New creates a Publisher for an existing topic handle.
func New(topic *pubsub.Topic, ids baseball.IDGenerator, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{topic: topic, ids: ids, logger: logger.Named("pubsub_publisher")}
}

// Notify marshals the notification to JSON and publishes it, waiting for the
// server acknowledgement.
func (p *Publisher) Notify(ctx context.Context, n baseball.Notification) error {
	if p.topic == nil {
		return errors.New("pubsub topic is not configured")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := &pubsub.Message{Data: data, Attributes: map[string]string{AttrEvent: n.Event}}
	if p.ids != nil {
		id, err := p.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate notification id: %w", err)
		}
		msg.Attributes[AttrNotificationID] = id
	}
	otel.GetTextMapPropagator().Inject(ctx, &pubsubCarrier{attrs: msg.Attributes})

	serverID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	p.logger.Debug("published notification", zap.String("event", n.Event), zap.String("server_id", serverID))
	return nil
}

// Close flushes pending messages and releases the client if Open created it.
func (p *Publisher) Close() error {
	if p.topic != nil {
		p.topic.Stop()
	}
	if p.client == nil {
		return nil
	}
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}

// pubsubCarrier implements propagation.TextMapCarrier for Pub/Sub attributes.
type pubsubCarrier struct {
	attrs map[string]string
}

func (c *pubsubCarrier) Get(key string) string {
	return c.attrs[key]
}

func (c *pubsubCarrier) Set(key, value string) {
	c.attrs[key] = value
}

func (c *pubsubCarrier) Keys() []string {
	keys := make([]string, 0, len(c.attrs))
	for k := range c.attrs {
		keys = append(keys, k)
	}
	return keys
}
