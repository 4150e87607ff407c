package amqp

import (
	"testing"
	"time"
)

func TestNewProfileUpdatedMessage(t *testing.T) {
	msg := NewProfileUpdatedMessage("u1")

	if msg.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", msg.UserID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestProfileUpdatedMessage_JSON(t *testing.T) {
	msg := &ProfileUpdatedMessage{
		UserID:    "u1",
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ProfileUpdatedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ProfileUpdatedMessageFromJSON() error = %v", err)
	}

	if parsed.UserID != msg.UserID {
		t.Errorf("Parsed UserID = %q, want %q", parsed.UserID, msg.UserID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestProfileUpdatedMessage_InvalidJSON(t *testing.T) {
	if _, err := ProfileUpdatedMessageFromJSON([]byte(`{"user_id": 42`)); err == nil {
		t.Error("ProfileUpdatedMessageFromJSON() should fail with invalid JSON")
	}
}
