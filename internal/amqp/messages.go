package amqp

import (
	"encoding/json"
	"time"
)

// EntryCreatedMessage tells the dispatch worker which entries a submission
// created. It carries only ids; the worker fetches the full entries from
// the store so the queue never holds stale copies.
type EntryCreatedMessage struct {
	EntryIDs  []string  `json:"entryIds"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryCreatedMessage(entryIDs []string) *EntryCreatedMessage {
	return &EntryCreatedMessage{
		EntryIDs:  entryIDs,
		Timestamp: time.Now(),
	}
}

func (m *EntryCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryCreatedMessageFromJSON(data []byte) (*EntryCreatedMessage, error) {
	var msg EntryCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
