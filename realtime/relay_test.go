package realtime

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRelayForward(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()
	sub, err := hub.Subscribe(OrderRoom(7))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	r := &Relay{hub: hub, done: make(chan struct{})}
	deliveries := make(chan amqp.Delivery, 2)
	body, _ := json.Marshal(envelope{Room: OrderRoom(7), Event: EventOrderUpdate, Payload: json.RawMessage(`{"status":"accepted"}`)})
	deliveries <- amqp.Delivery{Body: []byte("not json")}
	deliveries <- amqp.Delivery{Body: body}
	close(deliveries)

	r.forward(deliveries)

	select {
	case <-r.done:
	default:
		t.Fatal("forward should close done when deliveries end")
	}

	ev := <-sub.Events()
	if ev.Name != EventOrderUpdate {
		t.Fatalf("unexpected event %q", ev.Name)
	}
	raw, ok := ev.Payload.(json.RawMessage)
	if !ok || string(raw) != `{"status":"accepted"}` {
		t.Fatalf("unexpected payload %#v", ev.Payload)
	}
}
