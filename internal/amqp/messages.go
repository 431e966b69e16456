package amqp

import (
	"encoding/json"
	"time"
)

// StateChangedMessage announces that the snapshot stored under Key reached
// Revision. It carries no payload; consumers re-read the snapshot from the
// key-value store, so stale deliveries are harmless.
type StateChangedMessage struct {
	Key       string    `json:"key"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStateChangedMessage(key string, revision int64) *StateChangedMessage {
	return &StateChangedMessage{
		Key:       key,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *StateChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StateChangedMessageFromJSON(data []byte) (*StateChangedMessage, error) {
	var msg StateChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
