package amqp

import (
	"encoding/json"
	"time"
)

// ProfileUpdatedMessage tells the worker a user's profile preferences
// changed. It carries only the user id; the worker reads the current
// profile from the database before regenerating tasks.
type ProfileUpdatedMessage struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProfileUpdatedMessage(userID string) *ProfileUpdatedMessage {
	return &ProfileUpdatedMessage{
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *ProfileUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ProfileUpdatedMessageFromJSON(data []byte) (*ProfileUpdatedMessage, error) {
	var msg ProfileUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
