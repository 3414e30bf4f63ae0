package relay

import "encoding/json"

// PushMessage is the part of a push payload the relay understands:
// a title, a body and a target identifier used to focus the right view
// when the notification is acted on. Everything else in the payload is
// opaque and discarded.
type PushMessage struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Target string `json:"target"`
}

// ParsePushPayload extracts a PushMessage from an opaque payload. Parsing
// never fails: an empty or malformed payload yields the default message,
// since losing a notification is worse than showing a generic one.
func ParsePushPayload(payload []byte) PushMessage {
	msg := PushMessage{
		Title: "VoiceVerse",
		Body:  "You have a new notification",
	}
	if len(payload) == 0 {
		return msg
	}

	var parsed PushMessage
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return msg
	}
	if parsed.Title != "" {
		msg.Title = parsed.Title
	}
	if parsed.Body != "" {
		msg.Body = parsed.Body
	}
	msg.Target = parsed.Target
	return msg
}
