package chat

import "github.com/business-nexus/backend/internal/domain"

// Frame kinds exchanged over a chat channel. Client to server: auth,
// chat_message. Server to client: the rest.
const (
	frameAuth        = "auth"
	frameAuthSuccess = "auth_success"
	frameAuthError   = "auth_error"
	frameChatMessage = "chat_message"
	frameNewMessage  = "new_message"
	frameMessageSent = "message_sent"
)

// clientFrame is the union of fields a client may send. Type selects which
// fields are meaningful.
type clientFrame struct {
	Type       string `json:"type"`
	Token      string `json:"token"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

type authSuccessFrame struct {
	Type string `json:"type"`
}

type authErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// messageFrame carries a persisted message to either party; Type is
// new_message toward the recipient and message_sent toward the sender.
type messageFrame struct {
	Type    string                   `json:"type"`
	Message domain.MessageWithSender `json:"message"`
}
