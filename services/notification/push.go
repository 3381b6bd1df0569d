package notification

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
)

// Alerts older than this are useless to staff; FCM drops them instead of
// delivering late.
const pushTTL = 6 * time.Hour

// TopicPusher alerts staff devices subscribed to the team topic.
type TopicPusher struct {
	client *messaging.Client
	topic  string
}

// NewTopicPusher returns nil when FCM is not configured. A nil pusher sends
// nothing.
func NewTopicPusher(client *messaging.Client, topic string) *TopicPusher {
	if client == nil || topic == "" {
		return nil
	}
	return &TopicPusher{client: client, topic: topic}
}

func (p *TopicPusher) Push(ctx context.Context, title, body string, data map[string]string) error {
	if p == nil {
		return nil
	}
	if _, err := p.client.Send(ctx, teamMessage(p.topic, title, body, data)); err != nil {
		return fmt.Errorf("fcm send to %s: %w", p.topic, err)
	}
	return nil
}

func teamMessage(topic, title, body string, data map[string]string) *messaging.Message {
	ttl := pushTTL
	return &messaging.Message{
		Topic:        topic,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Android:      &messaging.AndroidConfig{Priority: "high", TTL: &ttl},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
}
