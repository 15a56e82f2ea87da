package eventbus

import (
	"sync"
	"testing"
	"time"
)

func TestAsyncEventBusDelivers(t *testing.T) {
	bus := NewAsyncEventBus(2)
	bus.Start()
	t.Cleanup(bus.Stop)

	var mu sync.Mutex
	got := make([]string, 0, 3)
	done := make(chan struct{}, 3)

	err := bus.Subscribe("test:topic", func(value string) {
		mu.Lock()
		got = append(got, value)
		mu.Unlock()
		done <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	bus.PublishAsync("test:topic", "a")
	bus.PublishAsync("test:topic", "b")
	bus.PublishAsync("test:topic", "c")

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 {
		t.Errorf("delivered %d events, want 3", len(got))
	}
}

func TestAsyncEventBusSurvivesPanickingSubscriber(t *testing.T) {
	bus := NewAsyncEventBus(1)
	bus.Start()
	t.Cleanup(bus.Stop)

	done := make(chan struct{}, 1)
	_ = bus.Subscribe("boom", func() {
		panic("subscriber bug")
	})
	_ = bus.Subscribe("ok", func() {
		done <- struct{}{}
	})

	bus.PublishAsync("boom")
	bus.PublishAsync("ok")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after subscriber panic")
	}
}

func TestSyncPublish(t *testing.T) {
	bus := NewAsyncEventBus(1)
	bus.Start()
	t.Cleanup(bus.Stop)

	called := false
	_ = bus.Subscribe("sync", func() { called = true })
	bus.Publish("sync")

	if !called {
		t.Error("synchronous publish must deliver before returning")
	}
}
