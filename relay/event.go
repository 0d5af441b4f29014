package relay

// Event is one outbound message. Type decides which fields are set.
type Event struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Audio   string `json:"audio,omitempty"`
}

const (
	EventTranscription = "transcription"
	EventTranslation   = "translation"
	EventConversation  = "conversation"
	EventError         = "error"
	EventPong          = "pong"
	EventStatus        = "status"
)

func TranscriptionEvent(id, text, audio string) Event {
	return Event{Type: EventTranscription, ID: id, Text: text, Audio: audio}
}

// GeneratedEvent pairs a translation or conversation result with its source
// transcription: same id, same audio payload.
func GeneratedEvent(op Operation, id, text, audio string) Event {
	return Event{Type: string(op), ID: id, Text: text, Audio: audio}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

func PongEvent() Event {
	return Event{Type: EventPong}
}

func StatusEvent(text string) Event {
	return Event{Type: EventStatus, Text: text}
}

// Channel is the duplex connection to one client. Next blocks for the next
// inbound frame and fails once the connection is gone; Emit must be safe to
// call from the pipeline and the heartbeat concurrently.
type Channel interface {
	Next() ([]byte, error)
	Emit(Event) error
	Close() error
}
