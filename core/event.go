package core

// EventType tags a change event envelope.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

type (
	// ChangeEvent is the envelope fanned out to every connected subscriber
	// after a successful mutation. CREATE and UPDATE carry the full
	// post-mutation snapshot; DELETE carries only the id.
	ChangeEvent struct {
		Type     EventType     `json:"type"`
		Object   *CanvasObject `json:"object,omitempty"`
		ObjectID string        `json:"objectId,omitempty"`
	}

	// Publisher is the capability the mutation path needs from the broadcast
	// hub: fire-and-forget delivery to whoever is connected right now.
	Publisher interface {
		Publish(event ChangeEvent)
	}
)
