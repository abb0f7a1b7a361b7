package pubsub

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// SentMessage records one SendMessage call.
type SentMessage struct {
	Topic string
	Data  any
}

// Mock is a mock implementation of the PubSubClient interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu        sync.Mutex
	projectID string
	Sent      []SentMessage

	// SendMessageErr, when set, is returned by every SendMessage call.
	SendMessageErr error
}

// NewMock creates a new mock instance.
func NewMock(projectID string) *Mock {
	return &Mock{projectID: projectID}
}

func (m *Mock) SendMessage(topic string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendMessageErr != nil {
		return m.SendMessageErr
	}
	m.Sent = append(m.Sent, SentMessage{Topic: topic, Data: data})
	return nil
}

func (m *Mock) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}

// SentMessages returns a copy of all recorded messages.
func (m *Mock) SentMessages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}
