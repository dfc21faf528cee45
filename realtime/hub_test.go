package realtime

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_PublishReachesOnlyRoomSubscribers(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	kitchen, err := hub.Subscribe(RestaurantRoom(1))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	other, _ := hub.Subscribe(RestaurantRoom(2))

	hub.Publish(RestaurantRoom(1), EventOrderNew, "payload")

	ev := receive(t, kitchen)
	if ev.Name != EventOrderNew || ev.Room != "restaurant:1" || ev.Payload != "payload" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	select {
	case ev := <-other.Events():
		t.Fatalf("other room received %+v", ev)
	default:
	}
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHub(1)
	defer hub.Close()

	sub, _ := hub.Subscribe(OrderRoom(7))
	hub.Publish(OrderRoom(7), EventOrderUpdate, 1)
	hub.Publish(OrderRoom(7), EventOrderUpdate, 2)

	if ev := receive(t, sub); ev.Payload != 1 {
		t.Fatalf("expected first event to be kept, got %+v", ev)
	}
	select {
	case ev := <-sub.Events():
		t.Fatalf("expected second event to be dropped, got %+v", ev)
	default:
	}
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub := NewHub(0)

	sub, _ := hub.Subscribe(OrderRoom(3))
	if n := hub.Subscribers(OrderRoom(3)); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
	sub.Close()
	sub.Close()
	if n := hub.Subscribers(OrderRoom(3)); n != 0 {
		t.Fatalf("expected 0 subscribers, got %d", n)
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected closed channel after unsubscribe")
	}

	live, _ := hub.Subscribe(OrderRoom(4))
	hub.Close()
	if _, ok := <-live.Events(); ok {
		t.Fatal("expected closed channel after hub close")
	}
	live.Close()
	if _, err := hub.Subscribe(OrderRoom(4)); err != ErrHubClosed {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}
