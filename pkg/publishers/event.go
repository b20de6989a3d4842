package publishers

import (
	"time"
)

// Actions reported in Event.Action.
const (
	ActionUpload = "upload"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event describes a change made to the account's permanent materials.
type Event struct {
	Action     string    `json:"action"`
	MediaID    string    `json:"media_id,omitempty"`
	MediaType  string    `json:"media_type,omitempty"`
	Source     string    `json:"source,omitempty"`
	URL        string    `json:"url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(action, mediaType, mediaID string) Event {
	return Event{
		Action:     action,
		MediaID:    mediaID,
		MediaType:  mediaType,
		OccurredAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes sent alongside the payload on
// queue/topic sinks. Empty values are left out.
func (e Event) attributes() map[string]string {
	out := map[string]string{"action": e.Action}
	if e.MediaType != "" {
		out["media_type"] = e.MediaType
	}
	return out
}
