package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single transcript turn. Transcripts live only inside a
// session and are never persisted.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	State     string `json:"state"`
	BookingID int64  `json:"booking_id,omitempty"`
}
