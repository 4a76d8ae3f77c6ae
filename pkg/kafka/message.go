package kafka

import (
	"encoding/json"
	"time"
)

// Message is the transport-level envelope for event publishing. Key selects
// the partition so events for one entity stay ordered.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// NewJSONMessage marshals payload into a Message keyed by key.
func NewJSONMessage(key string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}, nil
}
