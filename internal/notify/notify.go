package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"resto-pos/internal/workflow"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "pos_notifications"

// Rabbit publishes advisory order events on a fanout exchange so kitchen
// displays and waiter terminals can subscribe. Failures are logged and
// dropped; the engine never depends on delivery.
type Rabbit struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker and declares the fanout exchange.
func Dial(url string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch}, nil
}

func (r *Rabbit) Close() {
	if r == nil {
		return
	}
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

func (r *Rabbit) publish(kind string, ev workflow.OrderEvent) {
	body, err := json.Marshal(struct {
		Event string `json:"event"`
		workflow.OrderEvent
	}{kind, ev})
	if err != nil {
		log.Println("notify: marshal:", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = r.ch.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		log.Printf("notify: publish %s: %v", kind, err)
	}
}

func (r *Rabbit) OrderCreated(ev workflow.OrderEvent) { r.publish("order.created", ev) }
func (r *Rabbit) OrderReady(ev workflow.OrderEvent)   { r.publish("order.ready", ev) }

// Noop satisfies the notifier contract when no broker is configured.
type Noop struct{}

func (Noop) OrderCreated(workflow.OrderEvent) {}
func (Noop) OrderReady(workflow.OrderEvent)   {}
