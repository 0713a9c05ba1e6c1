package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hgvtools/geofence/module/geofence/internal/repository/notifier"
)

var _ notifier.Notifier = (*Notifier)(nil)

const (
	exchangeName = "hgv.notifications"
	queueName    = "geofence_notifications"
)

// Notifier publishes rendered alerts to a fanout exchange. Whatever UI or
// ops consumer is bound to the queue decides how "show message" and
// "play tone" actually look and sound.
type Notifier struct {
	ch *amqp.Channel
}

func NewNotifier(conn *amqp.Connection) (*Notifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &Notifier{ch: ch}, nil
}

type notificationMessage struct {
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Style     string `json:"style,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (n *Notifier) ShowMessage(ctx context.Context, text, style string) error {
	return n.publish(ctx, notificationMessage{
		Kind:      "message",
		Text:      text,
		Style:     style,
		Timestamp: time.Now().Unix(),
	})
}

func (n *Notifier) PlayTone(ctx context.Context) error {
	return n.publish(ctx, notificationMessage{
		Kind:      "tone",
		Timestamp: time.Now().Unix(),
	})
}

func (n *Notifier) publish(ctx context.Context, msg notificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return n.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
