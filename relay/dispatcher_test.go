package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDispatcher_SyncDispatch(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()
	ctx := context.Background()

	var got []string
	d.Subscribe(EventOnline, ListenerFunc(func(ctx context.Context, e Event) error {
		got = append(got, "second")
		return nil
	}), WithPriority(10))
	d.Subscribe(EventOnline, ListenerFunc(func(ctx context.Context, e Event) error {
		got = append(got, "first")
		return nil
	}), WithPriority(1))

	if err := d.Dispatch(ctx, NewConnectivityEvent(true)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("listener order = %v", got)
	}
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	calls := 0
	unsub := d.Subscribe(EventOffline, ListenerFunc(func(ctx context.Context, e Event) error {
		calls++
		return nil
	}))

	_ = d.Dispatch(context.Background(), NewConnectivityEvent(false))
	unsub()
	_ = d.Dispatch(context.Background(), NewConnectivityEvent(false))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if d.ListenerCount(EventOffline) != 0 {
		t.Error("listener not removed")
	}
}

func TestDispatcher_Once(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	calls := 0
	d.Subscribe(EventUpdateStaged, ListenerFunc(func(ctx context.Context, e Event) error {
		calls++
		return nil
	}), WithOnce())

	_ = d.Dispatch(context.Background(), NewUpdateStagedEvent("v2"))
	_ = d.Dispatch(context.Background(), NewUpdateStagedEvent("v2"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (once listener)", calls)
	}
}

func TestDispatcher_StopPropagation(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	secondRan := false
	d.Subscribe(EventPushReceived, ListenerFunc(func(ctx context.Context, e Event) error {
		return ErrStopPropagation
	}), WithPriority(1))
	d.Subscribe(EventPushReceived, ListenerFunc(func(ctx context.Context, e Event) error {
		secondRan = true
		return nil
	}), WithPriority(2))

	err := d.Dispatch(context.Background(), NewPushEvent(PushMessage{Title: "t"}))
	if err != nil {
		t.Errorf("ErrStopPropagation should not surface as error, got %v", err)
	}
	if secondRan {
		t.Error("propagation should have stopped before the second listener")
	}
}

func TestDispatcher_ListenerErrorStopsSyncChain(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	boom := errors.New("boom")
	d.Subscribe(EventReplayDone, ListenerFunc(func(ctx context.Context, e Event) error {
		return boom
	}))

	err := d.Dispatch(context.Background(), NewReplayDoneEvent("id", "hello_world.mp3"))
	if !errors.Is(err, boom) {
		t.Errorf("Dispatch() = %v, want boom", err)
	}
}

func TestDispatcher_AsyncDispatch(t *testing.T) {
	d := NewDispatcher(WithPoolSize(4))
	defer d.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	d.Subscribe(EventOnline, ListenerFunc(func(ctx context.Context, e Event) error {
		wg.Done()
		return nil
	}))

	d.DispatchAsync(context.Background(), NewConnectivityEvent(true))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async listener never ran")
	}
}

func TestParsePushPayload(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		msg := ParsePushPayload([]byte(`{"title":"Done","body":"hello_world.mp3 is ready","target":"history"}`))
		if msg.Title != "Done" || msg.Target != "history" {
			t.Errorf("ParsePushPayload() = %+v", msg)
		}
	})

	t.Run("malformed falls back to default", func(t *testing.T) {
		msg := ParsePushPayload([]byte(`{broken`))
		if msg.Title != "VoiceVerse" || msg.Body == "" {
			t.Errorf("ParsePushPayload() = %+v", msg)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		msg := ParsePushPayload(nil)
		if msg.Title != "VoiceVerse" {
			t.Errorf("ParsePushPayload() = %+v", msg)
		}
	})
}
