// Package notify publishes comment events for external moderation tools.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/eringen/mindjourney/content"
)

// EventCommentSubmitted is the type of the event published after a comment is created.
const EventCommentSubmitted = "comment.submitted"

// DefaultExchange is the fanout exchange events are published on.
const DefaultExchange = "events_exchange"

const excerptLength = 140

// CommentEvent announces a comment waiting for moderation.
type CommentEvent struct {
	Type      string    `json:"type"`
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	Name      string    `json:"name"`
	Excerpt   string    `json:"excerpt"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentEvent builds the submitted event for a stored comment.
func NewCommentEvent(doc content.CommentDocument) CommentEvent {
	return CommentEvent{
		Type:      EventCommentSubmitted,
		CommentID: doc.ID,
		PostID:    doc.Post.Ref,
		Name:      doc.Name,
		Excerpt:   excerpt(doc.Comment, excerptLength),
		CreatedAt: doc.CreatedAt,
	}
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

// Publisher sends comment events.
type Publisher interface {
	PublishComment(ctx context.Context, event CommentEvent) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishComment(context.Context, CommentEvent) error { return nil }
func (Nop) Close() error                                       { return nil }

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes events on a durable fanout exchange.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// NewRabbitMQPublisher dials url and declares exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// PublishComment marshals event and publishes it as persistent JSON.
func (p *RabbitMQPublisher) PublishComment(ctx context.Context, event CommentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			MessageId:    event.CommentID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
