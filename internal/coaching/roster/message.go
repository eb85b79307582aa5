package roster

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("empty message")

type Message struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(clientID, senderID, text string, now time.Time) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		SenderID:  senderID,
		Text:      text,
		Timestamp: now,
	}, nil
}

func (m Message) FromCoach() bool {
	return m.SenderID == CoachSenderID
}
