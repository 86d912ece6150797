package feed

import (
	"testing"
	"time"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting for event")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestHub_PublishScopedToLobby(t *testing.T) {
	hub := NewHub()
	h1, ch1 := hub.Subscribe(1)
	h2, ch2 := hub.Subscribe(2)
	defer hub.Unsubscribe(h1)
	defer hub.Unsubscribe(h2)

	hub.Publish(1, NewEvent(TableMemberships, OpInsert, nil, map[string]any{"id": 1}))

	ev := recvEvent(t, ch1)
	if ev.Table != TableMemberships || ev.Op != OpInsert {
		t.Fatalf("unexpected event: %+v", ev)
	}

	select {
	case ev := <-ch2:
		t.Fatalf("lobby 2 subscriber got lobby 1 event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	h, ch := hub.Subscribe(1)
	hub.Unsubscribe(h)

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after Unsubscribe")
	}

	// publishing to a lobby with no subscribers must not panic
	hub.Publish(1, NewEvent(TableLobbies, OpUpdate, nil, map[string]any{"id": 1}))
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	hub := NewHub()
	_, slow := hub.Subscribe(1)

	ev := NewEvent(TableMemberships, OpInsert, nil, map[string]any{"id": 1})
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Publish(1, ev)
	}

	// drain: exactly subscriberBuffer events, then a closed channel
	for i := 0; i < subscriberBuffer; i++ {
		recvEvent(t, slow)
	}
	select {
	case _, ok := <-slow:
		if ok {
			t.Fatalf("expected closed channel after overflow")
		}
	case <-time.After(time.Second):
		t.Fatalf("slow subscriber was not dropped")
	}

	// a fresh subscription still works after the drop
	h, ch := hub.Subscribe(1)
	defer hub.Unsubscribe(h)
	hub.Publish(1, ev)
	recvEvent(t, ch)
}

func TestNewEvent_UnmarshalablePayloadDegrades(t *testing.T) {
	ev := NewEvent(TableLobbies, OpInsert, nil, map[string]any{"bad": make(chan int)})
	if ev.After != nil {
		t.Fatalf("want empty payload for unmarshalable row, got %s", ev.After)
	}
}
