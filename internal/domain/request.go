package domain

import "time"

// Collaboration request states. Pending is the only non-terminal state; once
// a request is accepted or rejected it never transitions again.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// ValidRequestStatus reports whether status names a known request state.
func ValidRequestStatus(status string) bool {
	switch status {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	}
	return false
}

// CollaborationRequest is an introduction request from one user to another.
// Nothing prevents a user from sending a request to themselves, or from
// sending several pending requests to the same receiver.
type CollaborationRequest struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	SenderID   int64     `json:"senderId" gorm:"index;not null"`
	ReceiverID int64     `json:"receiverId" gorm:"index;not null"`
	Message    string    `json:"message,omitempty"`
	Status     string    `json:"status" gorm:"size:50;not null;default:pending"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RequestWithUsers attaches both parties' public records to a request for
// the request-list view.
type RequestWithUsers struct {
	CollaborationRequest
	Sender   User `json:"sender"`
	Receiver User `json:"receiver"`
}
