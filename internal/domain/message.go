package domain

import "time"

// Message is one direct chat message. Immutable once created; the id and
// timestamp are assigned by the store at creation time. Conversation order
// is timestamp ascending.
type Message struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	SenderID   int64     `json:"senderId" gorm:"index;not null"`
	ReceiverID int64     `json:"receiverId" gorm:"index;not null"`
	Content    string    `json:"content" gorm:"not null"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}

// MessageWithSender is the shape pushed over live channels and returned by
// the chat-history endpoint: the persisted record plus the sender's public
// fields, so clients can render without a second lookup.
type MessageWithSender struct {
	Message
	Sender *User `json:"sender,omitempty"`
}
