// Package connectivity tracks whether the origin is reachable and
// announces transitions on the relay. The offline-to-online edge is the
// signal the replay coordinator drains on.
package connectivity

import (
	"context"
	"sync"

	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"go.uber.org/zap"
)

// Monitor holds the current connectivity state. State changes arrive
// from two sources: explicit reports (the client's online/offline
// browser events forwarded to the agent) and the background probe.
// Both funnel through SetOnline, so transitions dispatch exactly once.
type Monitor struct {
	mu         sync.Mutex
	online     bool
	dispatcher *relay.Dispatcher
	log        *logger.CtxZapLogger
}

// NewMonitor creates a monitor. The initial state is online; a web
// client only installs the agent while the origin is reachable.
func NewMonitor(dispatcher *relay.Dispatcher) *Monitor {
	return &Monitor{
		online:     true,
		dispatcher: dispatcher,
		log:        logger.GetLogger("connectivity"),
	}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records the state and dispatches a connectivity event when
// the state actually changed. Repeated reports of the same state are
// absorbed silently.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}

	m.log.InfoCtx(ctx, "connectivity changed", zap.Bool("online", online))
	if m.dispatcher != nil {
		if err := m.dispatcher.Dispatch(ctx, relay.NewConnectivityEvent(online)); err != nil {
			m.log.WarnCtx(ctx, "connectivity event delivery failed", zap.Error(err))
		}
	}
}
