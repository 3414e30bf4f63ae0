// Package queue persists mutating requests issued while offline and
// replays them when connectivity returns. One request class is queued:
// TTS generation calls. Entry statuses are owned exclusively by the
// Coordinator; the foreground only appends and reads.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a queued mutation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusInFlight Status = "in-flight"
	StatusFailed   Status = "failed"
	// Completed mutations are removed from the queue rather than kept,
	// so no Completed constant exists on purpose.
)

// SpeechRequest is the TTS generation payload deferred while offline.
type SpeechRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// Mutation is one deferred state-changing request.
type Mutation struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	Payload    []byte    `json:"payload"`
	Status     Status    `json:"status"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// nowFunc is swapped in tests that need deterministic timestamps.
var nowFunc = time.Now

// NewMutation creates a pending mutation with a fresh local identifier.
func NewMutation(method, url string, payload []byte) *Mutation {
	now := nowFunc()
	return &Mutation{
		ID:         uuid.NewString(),
		Method:     method,
		URL:        url,
		Payload:    payload,
		Status:     StatusPending,
		EnqueuedAt: now,
		UpdatedAt:  now,
	}
}

// Speech decodes the payload as a SpeechRequest. Best-effort, used for
// notification text.
func (m *Mutation) Speech() (SpeechRequest, bool) {
	var req SpeechRequest
	if err := json.Unmarshal(m.Payload, &req); err != nil {
		return SpeechRequest{}, false
	}
	return req, true
}
