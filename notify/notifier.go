// Package notify abstracts the platform notification surface: a title, a
// body, and a target identifier to focus the right view.
package notify

import (
	"context"
	"sync"

	"github.com/AliGym19/voiceverse-sub001/logger"
	"go.uber.org/zap"
)

// Notification is one user-visible message.
type Notification struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Target string `json:"target,omitempty"`
}

// Notifier delivers notifications to the surface.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the agent log. Default sink when
// no platform surface is attached.
type LogNotifier struct {
	log *logger.CtxZapLogger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.GetLogger("notify")}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.log.InfoCtx(ctx, "notification",
		zap.String("title", notification.Title),
		zap.String("body", notification.Body),
		zap.String("target", notification.Target))
	return nil
}

// CollectNotifier records notifications in memory. Test double.
type CollectNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

// NewCollectNotifier creates an empty collector.
func NewCollectNotifier() *CollectNotifier {
	return &CollectNotifier{}
}

// Notify records the notification.
func (n *CollectNotifier) Notify(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

// Sent returns a copy of everything recorded so far.
func (n *CollectNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}
