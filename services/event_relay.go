package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/utils"
)

const EventQueueName = "queue.events"

// EventRelay forwards hub broadcasts to a message broker so other services
// can follow the queue without polling. Messages are buffered and dropped
// when the buffer is full; the broker is never on the request path.
type EventRelay struct {
	publish func(ctx context.Context, body []byte) error
	closer  func() error
	msgs    chan hub.Message
	done    chan struct{}
}

func newEventRelay(publish func(ctx context.Context, body []byte) error, closer func() error, buffer int) *EventRelay {
	r := &EventRelay{
		publish: publish,
		closer:  closer,
		msgs:    make(chan hub.Message, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// NewAMQPRelay dials RabbitMQ and declares the durable events queue.
func NewAMQPRelay(url string) (*EventRelay, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		EventQueueName, // name
		true,           // durable
		false,          // autoDelete
		false,          // exclusive
		false,          // noWait
		nil,            // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	publish := func(ctx context.Context, body []byte) error {
		return ch.PublishWithContext(ctx,
			"",             // default exchange
			EventQueueName, // routing key = queue name
			false,          // mandatory
			false,          // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				Body:         body,
			},
		)
	}
	closer := func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return newEventRelay(publish, closer, 256), nil
}

// Sink is registered with hub.AddSink.
func (r *EventRelay) Sink(msg hub.Message) {
	select {
	case r.msgs <- msg:
	default:
		utils.ErrorLogger.Printf("event relay buffer full, dropping %s", msg.Event)
	}
}

func (r *EventRelay) run() {
	defer close(r.done)
	for msg := range r.msgs {
		body, err := json.Marshal(msg)
		if err != nil {
			utils.ErrorLogger.Printf("event relay marshal %s: %v", msg.Event, err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.publish(ctx, body); err != nil {
			utils.ErrorLogger.Printf("event relay publish %s: %v", msg.Event, err)
		}
		cancel()
	}
}

// Close drains buffered messages and closes the broker connection.
func (r *EventRelay) Close() error {
	close(r.msgs)
	<-r.done
	if r.closer != nil {
		return r.closer()
	}
	return nil
}
