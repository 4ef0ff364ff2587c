package domain

import "time"

// MessageSender indicates which side of the conversation wrote a message.
type MessageSender string

const (
	SenderUser    MessageSender = "user"
	SenderSupport MessageSender = "support"
)

// Message is a public entry in the ticket thread.
type Message struct {
	ID                string
	Sender            MessageSender
	AuthorID          string
	Body              string
	Attachments       []Attachment
	SuggestedResponse *string
	System            bool
	CreatedAt         time.Time
}

func (m Message) clone() Message {
	c := m
	c.Attachments = append([]Attachment(nil), m.Attachments...)
	c.SuggestedResponse = cloneString(m.SuggestedResponse)
	return c
}

// Attachment stores metadata for message attachments.
type Attachment struct {
	Name      string
	URL       string
	MimeType  string
	SizeBytes int64
}

// InternalNote is agent-only commentary, never shown to the end user.
type InternalNote struct {
	ID        string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}
