package notify

import (
	"context"
	"testing"
)

func TestCollectNotifier(t *testing.T) {
	n := NewCollectNotifier()
	ctx := context.Background()

	_ = n.Notify(ctx, Notification{Title: "Offline", Body: "limited functionality"})
	_ = n.Notify(ctx, Notification{Title: "Ready", Body: "hello_world.mp3", Target: "history"})

	sent := n.Sent()
	if len(sent) != 2 {
		t.Fatalf("Sent() = %d notifications, want 2", len(sent))
	}
	if sent[1].Target != "history" {
		t.Errorf("Sent()[1].Target = %q", sent[1].Target)
	}

	// Sent returns a copy.
	sent[0].Title = "mutated"
	if n.Sent()[0].Title != "Offline" {
		t.Error("Sent() must return a copy")
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := NewLogNotifier()
	if err := n.Notify(context.Background(), Notification{Title: "t"}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
}
