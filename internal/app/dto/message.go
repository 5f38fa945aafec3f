package dto

import (
	"time"

	appmessaging "socialnet/internal/app/services/messaging"
	domainmessaging "socialnet/internal/domain/messaging"
)

// Message is a single direct message payload.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageList is a chronological page of a conversation.
type MessageList struct {
	Items []Message `json:"items"`
	Page  int       `json:"page"`
}

// Conversation is one aggregated inbox row.
type Conversation struct {
	Counterpart         UserSummary `json:"counterpart"`
	LastMessage         string      `json:"last_message"`
	LastMessageSenderID string      `json:"last_message_sender_id"`
	LastMessageIsRead   bool        `json:"last_message_is_read"`
	LastMessageAt       time.Time   `json:"last_message_at"`
}

// ConversationList is a paginated inbox.
type ConversationList struct {
	Items []Conversation `json:"items"`
	Page  int            `json:"page"`
}

func MapMessage(m *domainmessaging.Message) Message {
	if m == nil {
		return Message{}
	}
	return Message{
		ID:          m.ID,
		SenderID:    string(m.SenderID),
		RecipientID: string(m.RecipientID),
		Content:     m.Content,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

func MapMessages(messages []domainmessaging.Message, page int) MessageList {
	list := MessageList{Items: make([]Message, 0, len(messages)), Page: page}
	for i := range messages {
		list.Items = append(list.Items, MapMessage(&messages[i]))
	}
	return list
}

func MapConversations(rows []appmessaging.InboxRow, page int) ConversationList {
	list := ConversationList{Items: make([]Conversation, 0, len(rows)), Page: page}
	for _, row := range rows {
		list.Items = append(list.Items, Conversation{
			Counterpart: UserSummary{
				ID:       string(row.Counterpart.ID),
				Handle:   row.Counterpart.Handle,
				PhotoURL: row.Counterpart.PhotoURL,
			},
			LastMessage:         row.LastMessage,
			LastMessageSenderID: string(row.LastSenderID),
			LastMessageIsRead:   row.LastRead,
			LastMessageAt:       row.LastCreatedAt,
		})
	}
	return list
}
