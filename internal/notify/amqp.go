package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

// AMQPPublisher publishes JSON messages to a durable topic exchange over a
// single long-lived channel.
type AMQPPublisher struct {
	appID string
	log   *zap.Logger
	now   func() time.Time

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects to url and declares the exchange.
func DialAMQP(url, appID string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	log.Info("rabbitmq publisher ready", zap.String("exchange", Exchange))
	return &AMQPPublisher{appID: appID, log: log, now: time.Now, conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) TicketPurchased(ctx context.Context, r model.Reservation) error {
	return p.publish(ctx, RoutingTicketPurchased, purchasedPayload(r, p.now()))
}

func (p *AMQPPublisher) BookingConfirmed(ctx context.Context, r model.Reservation) error {
	return p.publish(ctx, RoutingBookingConfirmed, confirmedPayload(r, p.now()))
}

func (p *AMQPPublisher) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		AppId:        p.appID,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, Exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.log.Debug("notification published", zap.String("routing_key", key), zap.String("message_id", msg.MessageId))
	return nil
}

// Close closes the channel and then the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	return p.conn.Close()
}
