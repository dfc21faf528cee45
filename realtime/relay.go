package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "order_events_fanout"

type envelope struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Relay forwards published events through a RabbitMQ fanout exchange so
// that every API instance delivers them to its own local hub.
type Relay struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	hub      *Hub
	exchange string
	done     chan struct{}
}

func DialRelay(ctx context.Context, url, exchange string, hub *Hub) (*Relay, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	// one private queue per instance
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("consume queue: %w", err)
	}

	r := &Relay{
		conn:     conn,
		ch:       ch,
		hub:      hub,
		exchange: exchange,
		done:     make(chan struct{}),
	}
	go r.forward(deliveries)
	return r, nil
}

func (r *Relay) forward(deliveries <-chan amqp.Delivery) {
	defer close(r.done)
	for d := range deliveries {
		var env envelope
		if err := json.Unmarshal(d.Body, &env); err != nil {
			log.Println("realtime relay: dropping malformed message:", err)
			continue
		}
		r.hub.Publish(env.Room, env.Event, env.Payload)
	}
}

// Publish sends the event to the exchange. If the broker is unavailable
// the event is delivered to the local hub only.
func (r *Relay) Publish(room, name string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Println("realtime relay: marshal payload:", err)
		return
	}
	msg, _ := json.Marshal(envelope{Room: room, Event: name, Payload: body})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = r.ch.PublishWithContext(ctx,
		r.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg,
		})
	if err != nil {
		log.Println("realtime relay: publish failed, delivering locally:", err)
		r.hub.Publish(room, name, payload)
	}
}

func (r *Relay) Close() error {
	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	<-r.done
	return nil
}
