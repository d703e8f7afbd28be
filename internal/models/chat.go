package models

import "time"

// Conversation pairs two users for direct messaging. UserID1 is always
// the lower of the two ids, so an unordered user pair maps to exactly
// one row regardless of which side opened the conversation.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID1   uint      `json:"user_id_1" gorm:"column:user_id1;index;uniqueIndex:idx_conversation_pair"`
	UserID2   uint      `json:"user_id_2" gorm:"column:user_id2;index;uniqueIndex:idx_conversation_pair"`
	CreatedAt time.Time `json:"created_at"`
}

// OtherUserID returns the participant that is not userID.
func (conv *Conversation) OtherUserID(userID uint) uint {
	if conv.UserID1 == userID {
		return conv.UserID2
	}
	return conv.UserID1
}

// HasParticipant reports whether userID is one of the two participants.
func (conv *Conversation) HasParticipant(userID uint) bool {
	return conv.UserID1 == userID || conv.UserID2 == userID
}

// Message is an append-only chat message within a conversation
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"chat_id" gorm:"index"`
	SenderID       uint      `json:"sender_id" gorm:"index"`
	Content        string    `json:"content" gorm:"size:500"`
	SentAt         time.Time `json:"sent_at" gorm:"index"`
}

// CreateConversationRequest opens (or finds) a conversation with a target
// user, addressed by username or by numeric id, optionally sending a
// first message in the same request.
type CreateConversationRequest struct {
	Username string `json:"username,omitempty"`
	UserToID uint   `json:"userToId,omitempty"`
	Message  string `json:"message,omitempty" validate:"omitempty,max=500"`
}

// CreateMessageRequest defines the request body for sending a message
type CreateMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// ConversationSummary is one sidebar entry: the conversation, the other
// participant and the latest message, if any.
type ConversationSummary struct {
	ID           uint      `json:"id"`
	Partner      Profile   `json:"partner"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}
