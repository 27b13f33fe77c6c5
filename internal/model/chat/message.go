package chat

// Message roles. Messages are immutable once appended.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Message is a single conversation turn. Timestamp is epoch milliseconds.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}
