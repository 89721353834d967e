package event

import (
	"errors"
	"testing"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := NewBus()
	var order []int

	b.Subscribe(TopicUserMessage, func(any) error {
		order = append(order, 1)
		return nil
	})
	b.Subscribe(TopicUserMessage, func(any) error {
		order = append(order, 2)
		return nil
	})

	results := b.Publish(TopicUserMessage, "hello")
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for i, r := range results {
		if !r.Success {
			t.Errorf("result %d not successful: %+v", i, r)
		}
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v, want [1 2]", order)
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	b := NewBus()
	if results := b.Publish(TopicConfigChanged, nil); len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestHandlerErrorCaptured(t *testing.T) {
	b := NewBus()
	wantErr := errors.New("handler failed")
	b.Subscribe(TopicFileOpened, func(any) error { return wantErr })

	results := b.Publish(TopicFileOpened, nil)
	if len(results) != 1 || !errors.Is(results[0].Err, wantErr) {
		t.Errorf("results = %+v, want captured handler error", results)
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	b := NewBus()
	b.Subscribe(TopicFileClosed, func(any) error { panic("boom") })

	var delivered bool
	b.Subscribe(TopicFileClosed, func(any) error {
		delivered = true
		return nil
	})

	results := b.Publish(TopicFileClosed, nil)
	if !results[0].Panicked || results[0].PanicValue != "boom" {
		t.Errorf("result = %+v, want recovered panic", results[0])
	}
	if !delivered {
		t.Error("panic in one handler blocked delivery to the next")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	var calls int
	sub := b.Subscribe(TopicForegroundChanged, func(any) error {
		calls++
		return nil
	})

	b.Publish(TopicForegroundChanged, nil)
	b.Unsubscribe(sub)
	b.Publish(TopicForegroundChanged, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.SubscriberCount(TopicForegroundChanged) != 0 {
		t.Error("subscriber not removed")
	}
}
