package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// InquiryQueue carries inquiry lifecycle events to the notification consumer.
const InquiryQueue = "inquiry_events"

// Event types published on InquiryQueue.
const (
	EventInquiryCreated = "inquiry.created"
	EventInquiryReplied = "inquiry.replied"
)

// InquiryEvent is the JSON body of every message on InquiryQueue.
type InquiryEvent struct {
	Type       string    `json:"type"`
	InquiryID  string    `json:"inquiry_id"`
	ArtistID   string    `json:"artist_id"`
	ClientName string    `json:"client_name"`
	Email      string    `json:"client_email"`
	Subject    string    `json:"subject"`
	Priority   int       `json:"priority"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares InquiryQueue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", InquiryQueue).Msg("rabbitmq client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		InquiryQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", InquiryQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishInquiryEvent publishes event as a persistent JSON message.
func (c *Client) PublishInquiryEvent(event InquiryEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal inquiry event: %w", err)
	}

	err = c.channel.Publish(
		"", // default exchange
		InquiryQueue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("type", event.Type).Str("inquiry_id", event.InquiryID).Msg("inquiry event sent")
	return nil
}

// ConsumeInquiryEvents starts a goroutine handing every decoded event to handler.
// Messages are acked on success. Handler errors requeue the message; undecodable
// bodies are dropped.
func (c *Client) ConsumeInquiryEvents(handler func(InquiryEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", queue.Name).Msg("waiting for inquiry events")

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()

	return nil
}

// acknowledger is the subset of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(InquiryEvent) error) {
	settle(&msg, msg.DeliveryTag, msg.Body, handler)
}

func settle(ack acknowledger, tag uint64, body []byte, handler func(InquiryEvent) error) {
	var event InquiryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error().Err(err).Uint64("delivery_tag", tag).Msg("discarding malformed inquiry event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Uint64("delivery_tag", tag).Msg("nack failed")
		}
		return
	}

	if err := handler(event); err != nil {
		log.Error().Err(err).Uint64("delivery_tag", tag).Str("type", event.Type).Msg("inquiry event handler failed")
		if nackErr := ack.Nack(false, true); nackErr != nil {
			log.Error().Err(nackErr).Uint64("delivery_tag", tag).Msg("nack failed")
		}
		return
	}

	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Uint64("delivery_tag", tag).Msg("ack failed")
	}
}

// NotifyArtist is the default consumer handler: it logs the notification an artist would receive.
func NotifyArtist(event InquiryEvent) error {
	switch event.Type {
	case EventInquiryCreated:
		log.Info().
			Str("artist_id", event.ArtistID).
			Str("inquiry_id", event.InquiryID).
			Str("client", event.ClientName).
			Int("priority", event.Priority).
			Msg("new inquiry for artist")
	case EventInquiryReplied:
		log.Info().
			Str("inquiry_id", event.InquiryID).
			Str("client_email", event.Email).
			Msg("artist replied to inquiry")
	default:
		log.Warn().Str("type", event.Type).Msg("unknown inquiry event type")
	}
	return nil
}
