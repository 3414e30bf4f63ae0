// Package relay is the agent's event fan-out: push deliveries and
// connectivity transitions go in, notification-surface updates and
// replay triggers come out. The relay itself holds no state beyond its
// subscriptions.
package relay

import "time"

// Event names dispatched by the agent.
const (
	EventOnline       = "connectivity.online"
	EventOffline      = "connectivity.offline"
	EventPushReceived = "push.received"
	EventUpdateStaged = "lifecycle.update_staged"
	EventReplayDone   = "queue.replay_done"
)

// Event is anything the relay can dispatch.
type Event interface {
	// Name is the event's unique name, e.g. "connectivity.online".
	Name() string
}

// BaseEvent can be embedded by concrete events.
type BaseEvent struct {
	name       string
	occurredAt time.Time
}

// NewEvent creates a base event stamped with the current time.
func NewEvent(name string) BaseEvent {
	return BaseEvent{name: name, occurredAt: time.Now()}
}

// Name returns the event name.
func (e BaseEvent) Name() string { return e.name }

// OccurredAt returns when the event was created.
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }

// ConnectivityEvent signals an online/offline transition.
type ConnectivityEvent struct {
	BaseEvent
	Online bool
}

// NewConnectivityEvent creates the event for a transition.
func NewConnectivityEvent(online bool) *ConnectivityEvent {
	name := EventOffline
	if online {
		name = EventOnline
	}
	return &ConnectivityEvent{BaseEvent: NewEvent(name), Online: online}
}

// PushEvent carries a parsed push message.
type PushEvent struct {
	BaseEvent
	Message PushMessage
}

// NewPushEvent wraps a push message.
func NewPushEvent(msg PushMessage) *PushEvent {
	return &PushEvent{BaseEvent: NewEvent(EventPushReceived), Message: msg}
}

// UpdateStagedEvent tells the foreground a new version is installed but
// not yet active.
type UpdateStagedEvent struct {
	BaseEvent
	Version string
}

// NewUpdateStagedEvent creates the staged-update signal.
func NewUpdateStagedEvent(version string) *UpdateStagedEvent {
	return &UpdateStagedEvent{BaseEvent: NewEvent(EventUpdateStaged), Version: version}
}

// ReplayDoneEvent reports one completed replay.
type ReplayDoneEvent struct {
	BaseEvent
	MutationID string
	Filename   string
}

// NewReplayDoneEvent creates the replay-completion signal.
func NewReplayDoneEvent(mutationID, filename string) *ReplayDoneEvent {
	return &ReplayDoneEvent{
		BaseEvent:  NewEvent(EventReplayDone),
		MutationID: mutationID,
		Filename:   filename,
	}
}
